package walker

import (
	"time"

	"esdemedia/internal/convert"
)

// Summary aggregates the outcomes of one run.
type Summary struct {
	GamelistsCopied  int
	GamelistsSkipped int
	GamelistsFailed  int

	MediaFolders int
	FilesCopied  int
	FilesSkipped int
	FilesFailed  int

	VideosTranscoded int
	VideosRemuxed    int
	ImagesOptimized  int
	PDFsOptimized    int

	BytesIn  int64
	BytesOut int64
	Duration time.Duration
}

// SummaryRow is one labelled counter for display.
type SummaryRow struct {
	Label string
	Value int64
	Bytes bool
}

func (s *Summary) recordGamelist(out convert.Outcome) {
	switch {
	case out.Action == convert.ActionSkipped:
		s.GamelistsSkipped++
	case out.Succeeded:
		s.GamelistsCopied++
	default:
		s.GamelistsFailed++
	}
}

func (s *Summary) recordMedia(job convert.Job, out convert.Outcome) {
	switch {
	case out.Action == convert.ActionSkipped:
		s.FilesSkipped++
		return
	case !out.Succeeded:
		s.FilesFailed++
		return
	}
	s.FilesCopied++
	s.BytesIn += out.BytesIn
	s.BytesOut += out.BytesOut
	switch out.Action {
	case convert.ActionTranscoded:
		s.VideosTranscoded++
	case convert.ActionRemuxed:
		s.VideosRemuxed++
	case convert.ActionOptimized:
		switch job.Kind {
		case convert.KindImage:
			s.ImagesOptimized++
		case convert.KindPDF:
			s.PDFsOptimized++
		}
	}
}

// Failed reports the total number of failed jobs.
func (s Summary) Failed() int {
	return s.GamelistsFailed + s.FilesFailed
}

// SpaceSaved returns input minus output bytes over converted files.
func (s Summary) SpaceSaved() int64 {
	return s.BytesIn - s.BytesOut
}

// Rows lists the counters in display order.
func (s Summary) Rows() []SummaryRow {
	return []SummaryRow{
		{Label: "gamelists copied", Value: int64(s.GamelistsCopied)},
		{Label: "gamelists skipped", Value: int64(s.GamelistsSkipped)},
		{Label: "gamelists failed", Value: int64(s.GamelistsFailed)},
		{Label: "media folders", Value: int64(s.MediaFolders)},
		{Label: "files copied", Value: int64(s.FilesCopied)},
		{Label: "files skipped", Value: int64(s.FilesSkipped)},
		{Label: "files failed", Value: int64(s.FilesFailed)},
		{Label: "videos transcoded", Value: int64(s.VideosTranscoded)},
		{Label: "videos remuxed", Value: int64(s.VideosRemuxed)},
		{Label: "images optimized", Value: int64(s.ImagesOptimized)},
		{Label: "PDFs optimized", Value: int64(s.PDFsOptimized)},
		{Label: "bytes in", Value: s.BytesIn, Bytes: true},
		{Label: "bytes out", Value: s.BytesOut, Bytes: true},
		{Label: "space saved", Value: s.SpaceSaved(), Bytes: true},
	}
}
