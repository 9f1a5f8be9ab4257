package bootimage

import (
	"fmt"
	"io"
	"os"
)

// Apply writes the repair operations to w. Each operation seeks to its
// target offset and overwrites exactly the bytes of that field; no other
// byte is touched. Applying an empty list performs zero writes.
func Apply(w io.WriteSeeker, ops []RepairOperation) error {
	for _, op := range ops {
		if _, err := w.Seek(op.Offset, io.SeekStart); err != nil {
			return fmt.Errorf("seek to %s at 0x%x: %w", op.Kind, op.Offset, err)
		}
		if _, err := w.Write(op.Data); err != nil {
			return fmt.Errorf("write %s at 0x%x: %w", op.Kind, op.Offset, err)
		}
	}
	return nil
}

// PatchFile validates the boot image at inputPath and writes the repaired
// image to outputPath. When the two paths name the same underlying file
// (checked by file identity, not string comparison) the input is patched in
// place; otherwise the input is copied byte-for-byte first and only the
// copy is modified.
//
// Returns the repair operations that were applied; an empty list means the
// image was already self-consistent and, for the in-place case, the file
// was not written at all.
func PatchFile(inputPath, outputPath string) ([]RepairOperation, error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return nil, err
	}

	ops, err := Check(in)
	if err != nil {
		in.Close()
		return nil, err
	}

	samePath, err := sameFile(inputPath, outputPath)
	if err != nil {
		in.Close()
		return nil, err
	}
	if !samePath {
		if err := copyFile(in, outputPath); err != nil {
			in.Close()
			return nil, fmt.Errorf("copy input to output: %w", err)
		}
	}
	// Release the read handle before reopening for writing.
	if err := in.Close(); err != nil {
		return nil, err
	}

	out, err := os.OpenFile(outputPath, os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	defer out.Close()

	if err := Apply(out, ops); err != nil {
		return nil, err
	}
	return ops, nil
}

// sameFile reports whether the two paths refer to the same underlying
// file. A missing output path is never the same file as an existing input.
func sameFile(a, b string) (bool, error) {
	if a == b {
		return true, nil
	}
	ai, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	bi, err := os.Stat(b)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return os.SameFile(ai, bi), nil
}

func copyFile(src io.ReadSeeker, dstPath string) error {
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return err
	}
	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}
