package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Stage names reported in progress updates.
const (
	StageTranscode = "transcode"
	StageRemux     = "remux"
)

// ProgressUpdate is one block of ffmpeg progress output.
type ProgressUpdate struct {
	Source  string
	Stage   string
	Percent float64
	OutTime time.Duration
	ETA     time.Duration
	Speed   float64
	Done    bool
}

// Message renders the update the way the console shows it.
func (u ProgressUpdate) Message() string {
	label := formatStageLabel(u.Stage)
	if u.Percent < 0 {
		return label
	}
	base := fmt.Sprintf("%s %.1f%%", label, u.Percent)
	extras := make([]string, 0, 2)
	if eta := formatETA(u.ETA); eta != "" {
		extras = append(extras, "ETA "+eta)
	}
	if u.Speed > 0 {
		extras = append(extras, fmt.Sprintf("@ %.1fx", u.Speed))
	}
	if len(extras) == 0 {
		return base
	}
	return fmt.Sprintf("%s (%s)", base, strings.Join(extras, ", "))
}

// progressParser accumulates key=value lines until a progress= line closes
// the block. Percent is -1 when the duration is unknown.
type progressParser struct {
	source   string
	stage    string
	duration time.Duration
	started  time.Time
	now      func() time.Time

	outTime time.Duration
	speed   float64
}

func newProgressParser(source, stage string, duration time.Duration) *progressParser {
	return &progressParser{source: source, stage: stage, duration: duration, started: time.Now(), now: time.Now}
}

// Feed consumes one stdout line and returns an update when a block ends.
func (p *progressParser) Feed(line string) (ProgressUpdate, bool) {
	key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
	if !ok {
		return ProgressUpdate{}, false
	}
	value = strings.TrimSpace(value)
	switch key {
	case "out_time_us", "out_time_ms":
		// ffmpeg reports microseconds under both keys.
		if us, err := strconv.ParseInt(value, 10, 64); err == nil && us >= 0 {
			p.outTime = time.Duration(us) * time.Microsecond
		}
	case "out_time":
		if d, ok := parseClock(value); ok {
			p.outTime = d
		}
	case "speed":
		if v, err := strconv.ParseFloat(strings.TrimSuffix(value, "x"), 64); err == nil {
			p.speed = v
		}
	case "progress":
		return p.update(value == "end"), true
	}
	return ProgressUpdate{}, false
}

func (p *progressParser) update(done bool) ProgressUpdate {
	u := ProgressUpdate{Source: p.source, Stage: p.stage, OutTime: p.outTime, Speed: p.speed, Percent: -1, Done: done}
	if p.duration <= 0 {
		if done {
			u.Percent = 100
		}
		return u
	}
	pct := float64(p.outTime) / float64(p.duration) * 100
	if done || pct > 100 {
		pct = 100
	}
	u.Percent = pct
	if pct > 0 && pct < 100 {
		elapsed := p.now().Sub(p.started)
		u.ETA = time.Duration(float64(elapsed)*(100/pct)) - elapsed
	}
	return u
}

// parseClock parses HH:MM:SS.micro as printed in out_time.
func parseClock(value string) (time.Duration, bool) {
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	s, err3 := strconv.ParseFloat(parts[2], 64)
	if err1 != nil || err2 != nil || err3 != nil || h < 0 || m < 0 || s < 0 {
		return 0, false
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s*float64(time.Second)), true
}

func formatStageLabel(stage string) string {
	stage = strings.TrimSpace(stage)
	if stage == "" {
		return "Progress"
	}
	lower := strings.ToLower(stage)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

func formatETA(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	d = d.Round(time.Second)
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	parts := make([]string, 0, 3)
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 || (hours == 0 && minutes == 0) {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}
	return strings.Join(parts, "")
}
