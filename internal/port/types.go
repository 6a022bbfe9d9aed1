package port

import (
	"fmt"
	"strings"
	"time"
)

// Protocol represents a network protocol. Only TCP listeners are reported.
type Protocol string

const (
	TCP Protocol = "TCP"
)

// AppType is the application framework or runtime a process was classified as.
type AppType int

const (
	AppUnknown AppType = iota
	AppNodeJs
	AppPython
	AppDotNet
	AppJava
	AppGo
	AppRuby
	AppPhp
	AppRust
	AppNginx
	AppApache
)

var appTypeNames = map[AppType]string{
	AppNodeJs:  "Node.js",
	AppPython:  "Python",
	AppDotNet:  ".NET",
	AppJava:    "Java",
	AppGo:      "Go",
	AppRuby:    "Ruby",
	AppPhp:     "PHP",
	AppRust:    "Rust",
	AppNginx:   "Nginx",
	AppApache:  "Apache",
	AppUnknown: "Unknown",
}

// AppTypes lists every tag in display order.
var AppTypes = []AppType{
	AppNodeJs, AppPython, AppDotNet, AppJava, AppGo,
	AppRuby, AppPhp, AppRust, AppNginx, AppApache, AppUnknown,
}

// String returns the display name, e.g. "Node.js" or ".NET".
func (a AppType) String() string {
	if name, ok := appTypeNames[a]; ok {
		return name
	}
	return appTypeNames[AppUnknown]
}

// ParseAppType maps a display name or a loose alias ("node", "dotnet", "php")
// back to its tag.
func ParseAppType(s string) (AppType, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(".", "", "-", "", "_", "", " ", "").Replace(norm)
	switch norm {
	case "nodejs", "node":
		return AppNodeJs, nil
	case "python", "py":
		return AppPython, nil
	case "net", "dotnet":
		return AppDotNet, nil
	case "java":
		return AppJava, nil
	case "go", "golang":
		return AppGo, nil
	case "ruby":
		return AppRuby, nil
	case "php":
		return AppPhp, nil
	case "rust":
		return AppRust, nil
	case "nginx":
		return AppNginx, nil
	case "apache", "httpd":
		return AppApache, nil
	case "unknown":
		return AppUnknown, nil
	}
	return AppUnknown, fmt.Errorf("unknown app type %q", s)
}

// ProcessRecord holds what is known about the process owning a listener.
// Command and User are empty when they could not be retrieved.
type ProcessRecord struct {
	PID       int
	Name      string // short executable name from lsof
	Command   string // full command line
	StartedAt *time.Time
	Elapsed   *time.Duration // whole seconds, set only when StartedAt <= now
	User      string
}

// NewProcessRecord creates a record with only the fields lsof reports.
func NewProcessRecord(pid int, name string) ProcessRecord {
	return ProcessRecord{PID: pid, Name: name}
}

// SetStartedAt records the start time and derives Elapsed relative to now.
// A start time in the future leaves Elapsed unset.
func (p *ProcessRecord) SetStartedAt(startedAt, now time.Time) {
	p.StartedAt = &startedAt
	p.Elapsed = nil
	if startedAt.After(now) {
		return
	}
	elapsed := now.Sub(startedAt).Truncate(time.Second)
	p.Elapsed = &elapsed
}

// DisplayCommand returns the command line, falling back to the process name.
func (p ProcessRecord) DisplayCommand() string {
	if p.Command != "" {
		return p.Command
	}
	return p.Name
}

// PortEntry represents a single listening socket and the process owning it.
type PortEntry struct {
	Port     uint16
	Protocol Protocol
	Process  ProcessRecord
	AppType  *AppType
}

// NewPortEntry creates an unclassified TCP entry.
func NewPortEntry(port uint16, process ProcessRecord) PortEntry {
	return PortEntry{Port: port, Protocol: TCP, Process: process}
}

// SetAppType attaches a classification tag.
func (e *PortEntry) SetAppType(a AppType) {
	e.AppType = &a
}

// AppTypeName returns the display name of the tag, "Unknown" when unset.
func (e PortEntry) AppTypeName() string {
	if e.AppType == nil {
		return AppUnknown.String()
	}
	return e.AppType.String()
}

// String returns a human-readable representation of the entry.
func (e PortEntry) String() string {
	return fmt.Sprintf("%d/%s (PID %d, %s)", e.Port, e.Protocol, e.Process.PID, e.Process.Name)
}
