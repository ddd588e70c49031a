package receipt

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// BundleFileName is the download name of a multi-receipt archive.
const BundleFileName = "Bills.zip"

// Bundle renders every layout as format ("pdf" or "html") and packs them into
// one zip archive, one <orderID>.<format> entry per receipt.
func Bundle(layouts []Layout, format string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, layout := range layouts {
		var (
			data []byte
			err  error
		)
		switch format {
		case "pdf":
			data, err = PDF(layout)
		case "html":
			var page string
			page, err = HTML(layout)
			data = []byte(page)
		default:
			return nil, fmt.Errorf("unsupported receipt format %q", format)
		}
		if err != nil {
			return nil, fmt.Errorf("receipt %s: %w", layout.OrderID, err)
		}

		entry, err := zw.Create(layout.OrderID + "." + format)
		if err != nil {
			return nil, err
		}
		if _, err := entry.Write(data); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
