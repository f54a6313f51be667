package pdfopt

import (
	"context"
	"errors"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"esdemedia/internal/convert"
	"esdemedia/internal/services"
)

// ErrAlreadyOptimal is returned when every embedded image already uses a
// modern codec and a structural rewrite would gain nothing.
var ErrAlreadyOptimal = errors.New("pdf images already optimally encoded")

var modernFilters = map[string]struct{}{"JPXDecode": {}, "JBIG2Decode": {}}

var disableConfig sync.Once

// ImageStats counts embedded image streams by whether they use a modern codec.
type ImageStats struct {
	Images int
	Modern int
}

// AllModern reports whether every embedded image is JPEG 2000 or JBIG2. A
// document without images has nothing to recompress and counts as modern.
func (s ImageStats) AllModern() bool {
	return s.Images == s.Modern
}

// InspectImages scans the cross-reference table for image XObjects.
func InspectImages(path string) (ImageStats, error) {
	disableConfig.Do(api.DisableConfigDir)
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return ImageStats{}, err
	}
	var stats ImageStats
	for _, entry := range ctx.XRefTable.Table {
		if entry == nil || entry.Free || entry.Object == nil {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok {
			continue
		}
		if subtype := sd.NameEntry("Subtype"); subtype == nil || *subtype != "Image" {
			continue
		}
		stats.Images++
		if usesModernFilter(sd.FilterPipeline) {
			stats.Modern++
		}
	}
	return stats, nil
}

func usesModernFilter(pipeline []types.PDFFilter) bool {
	for _, f := range pipeline {
		if _, ok := modernFilters[f.Name]; ok {
			return true
		}
	}
	return false
}

// Optimize rewrites src into dst with compressed object and xref streams.
// Image data is not re-encoded.
func Optimize(src, dst string) error {
	disableConfig.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.WriteObjectStream = true
	conf.WriteXRefStream = true
	return api.OptimizeFile(src, dst, conf)
}

// PdfcpuAttempt inspects then optimizes with pdfcpu. It returns
// ErrAlreadyOptimal, which stops the chain, when there is nothing to gain.
func PdfcpuAttempt() convert.Attempt {
	return convert.AttemptFunc{
		Label: "pdfcpu",
		Fn: func(ctx context.Context, src, dst string) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			stats, err := InspectImages(src)
			if err != nil {
				return services.Wrap(services.ErrExternalTool, component, "pdfcpu", "read document", err)
			}
			if stats.AllModern() {
				return ErrAlreadyOptimal
			}
			if err := Optimize(src, dst); err != nil {
				return services.Wrap(services.ErrExternalTool, component, "pdfcpu", "optimize", err)
			}
			return nil
		},
	}
}
