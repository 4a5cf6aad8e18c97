// SPDX-License-Identifier: EPL-2.0

package msu1

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/ik5/msukit/utils"
)

// ApplyGain scales every sample of the MSU-1 file at path by db decibels.
// Samples saturate at the int16 limits and the header is kept as is.
func ApplyGain(path string, db float64) error {
	return Scale(path, utils.GainMultiplier(db))
}

// ApplyVolume scales the file at path by a percentage, 100 leaves it unchanged.
func ApplyVolume(path string, percent float64) error {
	return Scale(path, percent/100)
}

// Scale multiplies every sample of the file at path by factor. The result
// is written next to the original and renamed over it.
func Scale(path string, factor float64) error {
	if factor < 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return fmt.Errorf("msu1: invalid gain factor %v", factor)
	}

	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("msu1: %w", err)
	}
	defer in.Close()

	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(in, header); err != nil || string(header[:4]) != Magic {
		return &FormatError{Kind: ErrBadHeader, Path: path}
	}

	out, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("msu1: %w", err)
	}
	tmp := out.Name()

	if err := scaleInto(out, in, header, factor); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("msu1: %w", err)
	}

	in.Close()
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("msu1: %w", err)
	}

	return nil
}

func scaleInto(out io.Writer, in io.Reader, header []byte, factor float64) error {
	bw := bufio.NewWriter(out)
	if _, err := bw.Write(header); err != nil {
		return fmt.Errorf("msu1: %w", err)
	}

	buf := make([]byte, 64*1024)
	carry := 0
	for {
		n, err := in.Read(buf[carry:])
		n += carry

		whole := n - n%2
		for i := 0; i < whole; i += 2 {
			v := float64(int16(binary.LittleEndian.Uint16(buf[i:])))
			binary.LittleEndian.PutUint16(buf[i:], uint16(utils.ClampInt16(math.Round(v*factor))))
		}
		if _, werr := bw.Write(buf[:whole]); werr != nil {
			return fmt.Errorf("msu1: %w", werr)
		}

		carry = copy(buf, buf[whole:n])

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("msu1: %w", err)
		}
	}

	// a dangling byte is not a sample; keep it untouched
	if carry > 0 {
		if _, err := bw.Write(buf[:carry]); err != nil {
			return fmt.Errorf("msu1: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("msu1: %w", err)
	}
	return nil
}
