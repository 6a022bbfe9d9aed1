package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/lu-zhengda/ports/internal/port"
	"github.com/lu-zhengda/ports/internal/snapshot"
)

type jsonProcess struct {
	PID       int    `json:"pid"`
	Name      string `json:"name"`
	Command   string `json:"command,omitempty"`
	StartedAt string `json:"started_at,omitempty"`
	Elapsed   *int64 `json:"elapsed,omitempty"` // seconds
	User      string `json:"user,omitempty"`
}

type jsonPort struct {
	Port     uint16      `json:"port"`
	Protocol string      `json:"protocol"`
	Process  jsonProcess `json:"process"`
	AppType  string      `json:"app_type,omitempty"`
}

type jsonSnapshot struct {
	Ports      []jsonPort `json:"ports"`
	TotalCount int        `json:"total_count"`
	Timestamp  string     `json:"timestamp"`
	Warnings   []string   `json:"warnings,omitempty"`
}

// RenderJSON writes snap as an indented JSON document.
func RenderJSON(w io.Writer, snap *snapshot.Snapshot) error {
	out := jsonSnapshot{
		Ports:      make([]jsonPort, 0, len(snap.Entries)),
		TotalCount: len(snap.Entries),
		Timestamp:  snap.TakenAt.Format(time.RFC3339),
		Warnings:   snap.Warnings,
	}
	for _, e := range snap.Entries {
		out.Ports = append(out.Ports, toJSONPort(e))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func toJSONPort(e port.PortEntry) jsonPort {
	p := e.Process
	jp := jsonPort{
		Port:     e.Port,
		Protocol: string(e.Protocol),
		Process: jsonProcess{
			PID:     p.PID,
			Name:    p.Name,
			Command: p.Command,
			User:    p.User,
		},
	}
	if p.StartedAt != nil {
		jp.Process.StartedAt = p.StartedAt.Format(time.RFC3339)
	}
	if p.Elapsed != nil {
		secs := int64(*p.Elapsed / time.Second)
		jp.Process.Elapsed = &secs
	}
	if e.AppType != nil {
		jp.AppType = e.AppType.String()
	}
	return jp
}
