package port

import (
	"strconv"
	"strings"
)

// ParseFieldOutput parses the output of lsof -F pcn.
//
// The field format is a running context rather than delimited records:
//
//	p<pid>     starts a process set and replaces the current pid
//	c<name>    replaces the current command name
//	n<addr>    a socket name such as "*:3000" or "[::1]:9000"
//
// A "p" line does not clear the current name; it only changes once another
// "c" line arrives. Entries are emitted on "n" lines when both a pid and a
// name are known, and duplicates of (port, pid) are dropped.
func ParseFieldOutput(output string) []PortEntry {
	var (
		entries     []PortEntry
		currentPID  int
		havePID     bool
		currentName string
		haveName    bool
	)

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}

		tag, value := line[0], line[1:]
		switch tag {
		case 'p':
			pid, err := strconv.Atoi(value)
			currentPID, havePID = pid, err == nil && pid > 0
		case 'c':
			currentName, haveName = value, true
		case 'n':
			port, ok := ExtractPort(value)
			if !ok || !havePID || !haveName {
				continue
			}
			if containsEntry(entries, port, currentPID) {
				continue
			}
			entries = append(entries, NewPortEntry(port, NewProcessRecord(currentPID, currentName)))
		}
	}
	return entries
}

// ExtractPort returns the port from an lsof socket name. The port is the
// text after the last colon, so bracketed IPv6 hosts are handled:
//
//	"*:3000"         -> 3000
//	"127.0.0.1:8080" -> 8080
//	"[::1]:9000"     -> 9000
func ExtractPort(name string) (uint16, bool) {
	idx := strings.LastIndex(name, ":")
	port, err := strconv.ParseUint(name[idx+1:], 10, 16)
	if err != nil || port == 0 {
		return 0, false
	}
	return uint16(port), true
}

func containsEntry(entries []PortEntry, port uint16, pid int) bool {
	for _, e := range entries {
		if e.Port == port && e.Process.PID == pid {
			return true
		}
	}
	return false
}
