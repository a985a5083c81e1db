package docx

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
)

// Write serializes the package to w. Parts with live trees are re-serialized
// from the tree; all other parts are copied through unmodified, in their
// original order. Parts created after open are appended.
func (d *Document) Write(w io.Writer) error {
	zw := zip.NewWriter(w)

	for _, name := range d.partOrder {
		data, err := d.partBytes(name)
		if err != nil {
			return err
		}
		pw, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("creating zip entry %s: %w", name, err)
		}
		if _, err := pw.Write(data); err != nil {
			return fmt.Errorf("writing zip entry %s: %w", name, err)
		}
	}
	for _, name := range d.added {
		data, err := d.partBytes(name)
		if err != nil {
			return err
		}
		pw, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("creating zip entry %s: %w", name, err)
		}
		if _, err := pw.Write(data); err != nil {
			return fmt.Errorf("writing zip entry %s: %w", name, err)
		}
	}

	return zw.Close()
}

func (d *Document) partBytes(name string) ([]byte, error) {
	if tree, ok := d.trees[name]; ok {
		data, err := tree.WriteToBytes()
		if err != nil {
			return nil, fmt.Errorf("serializing %s: %w", name, err)
		}
		return data, nil
	}
	return d.raw[name], nil
}

// Save writes the package to filename.
func (d *Document) Save(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filename, err)
	}
	if err := d.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
