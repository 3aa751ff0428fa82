package render

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var disableConfigDir sync.Once

func verifyConfig() *model.Configuration {
	// pdfcpu would otherwise create a config directory under the user's home.
	disableConfigDir.Do(func() { model.ConfigPath = "disable" })
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// PageCount parses doc and returns its number of pages.
func PageCount(doc []byte) (int, error) {
	return api.PageCount(bytes.NewReader(doc), verifyConfig())
}

// Verify checks that doc is a readable PDF with exactly wantPages pages.
func Verify(doc []byte, wantPages int) error {
	pages, err := PageCount(doc)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	if pages != wantPages {
		return fmt.Errorf("document has %d pages, expected %d", pages, wantPages)
	}
	return nil
}
