package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Status represents the installation status of a dependency
type Status struct {
	Installed bool
	Path      string
	Version   string
}

// Dependency is an external program burnsub shells out to
type Dependency struct {
	Name        string
	VersionFlag string
	Purpose     string
	Required    bool
}

// Result pairs a dependency with its status
type Result struct {
	Dependency
	Status
}

var (
	FFmpeg     = Dependency{Name: "ffmpeg", VersionFlag: "-version", Purpose: "audio extraction and caption rendering", Required: true}
	FFprobe    = Dependency{Name: "ffprobe", VersionFlag: "-version", Purpose: "video duration and frame size", Required: true}
	WhisperCli = Dependency{Name: "whisper-cli", VersionFlag: "--version", Purpose: "local whisper-cpp transcription"}
	FcList     = Dependency{Name: "fc-list", VersionFlag: "--version", Purpose: "caption font lookup"}
	NotifySend = Dependency{Name: "notify-send", VersionFlag: "--version", Purpose: "desktop notifications"}
)

// Check looks dep up in PATH and reads the first line of its version output
func Check(dep Dependency) Status {
	path, err := exec.LookPath(dep.Name)
	if err != nil {
		return Status{Installed: false}
	}

	status := Status{
		Installed: true,
		Path:      path,
	}

	if dep.VersionFlag != "" {
		output, err := exec.Command(path, dep.VersionFlag).CombinedOutput()
		if err == nil {
			line, _, _ := strings.Cut(string(output), "\n")
			status.Version = strings.TrimSpace(line)
		}
	}

	return status
}

// CheckWhisperCli checks if whisper-cli is installed and returns its status
func CheckWhisperCli() Status {
	return Check(WhisperCli)
}

// CheckFFmpeg checks if ffmpeg is installed and returns its status
func CheckFFmpeg() Status {
	return Check(FFmpeg)
}

// CheckFFprobe checks if ffprobe is installed and returns its status
func CheckFFprobe() Status {
	return Check(FFprobe)
}

// CheckAll reports every dependency. whisper-cli becomes required when the
// local recognizer is configured.
func CheckAll(localRecognizer bool) []Result {
	list := []Dependency{FFmpeg, FFprobe, WhisperCli, FcList, NotifySend}
	results := make([]Result, 0, len(list))
	for _, dep := range list {
		if dep.Name == WhisperCli.Name && localRecognizer {
			dep.Required = true
		}
		results = append(results, Result{Dependency: dep, Status: Check(dep)})
	}
	return results
}

// RequireAll returns an error naming every missing required dependency
func RequireAll(results []Result) error {
	var missing []string
	for _, r := range results {
		if r.Required && !r.Installed {
			missing = append(missing, r.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required programs: %s (run burnsub deps for details)", strings.Join(missing, ", "))
	}
	return nil
}
