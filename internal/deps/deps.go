package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external tool esdemedia can use. Alternatives are
// tried in order when Command is not on PATH (ImageMagick 7 ships "magick",
// older installs only "convert").
type Requirement struct {
	Name         string
	Command      string
	Alternatives []string
	Description  string
	Optional     bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Path        string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		candidates := append([]string{cmd}, req.Alternatives...)
		if name, path, ok := Resolve(candidates...); ok {
			status.Command = name
			status.Path = path
			status.Available = true
		} else {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
		}
		results = append(results, status)
	}
	return results
}

// Resolve returns the first candidate found on PATH together with its
// absolute location.
func Resolve(candidates ...string) (string, string, bool) {
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if path, err := exec.LookPath(candidate); err == nil {
			return candidate, path, true
		}
	}
	return "", "", false
}
