// Package detect classifies a process by the framework or runtime it runs,
// using substring rules over its name and command line.
package detect

import (
	"strings"

	"github.com/lu-zhengda/ports/internal/port"
)

type field int

const (
	fieldName field = iota
	fieldCommand
)

// matcher checks one pattern against one field of the process.
type matcher struct {
	field  field
	suffix bool // match the end of the field instead of anywhere in it
	text   string
}

func (m matcher) match(name, command string) bool {
	s := command
	if m.field == fieldName {
		s = name
	}
	if m.suffix {
		return strings.HasSuffix(s, m.text)
	}
	return strings.Contains(s, m.text)
}

func inName(text string) matcher    { return matcher{field: fieldName, text: text} }
func inCommand(text string) matcher { return matcher{field: fieldCommand, text: text} }
func commandEndsWith(text string) matcher {
	return matcher{field: fieldCommand, suffix: true, text: text}
}

// rule maps a set of matchers to a tag; any matcher firing selects it.
type rule struct {
	app      port.AppType
	matchers []matcher
}

// rules are evaluated top to bottom and the first hit wins. Order matters:
// "cargo run" contains "go run", so Rust must come before Go.
var rules = []rule{
	{port.AppNodeJs, []matcher{
		inName("node"),
		inCommand("node "),
		inCommand("npm "),
		inCommand("yarn "),
		inCommand("npx "),
		inCommand("next "),
		inCommand("react-scripts"),
		inCommand("vite"),
		inCommand("webpack"),
	}},
	{port.AppPython, []matcher{
		inName("python"),
		inCommand("python "),
		inCommand("python3 "),
		inCommand("uvicorn "),
		inCommand("gunicorn "),
		inCommand("flask "),
		inCommand("django"),
		inCommand("fastapi"),
	}},
	{port.AppDotNet, []matcher{
		inName("dotnet"),
		inCommand("dotnet "),
		commandEndsWith(".dll"),
		inCommand(".dll "),
	}},
	{port.AppJava, []matcher{
		inName("java"),
		inCommand("java "),
		commandEndsWith(".jar"),
		inCommand(".jar "),
		inCommand("spring"),
		inCommand("tomcat"),
		inCommand("jetty"),
	}},
	{port.AppRust, []matcher{
		inCommand("cargo run"),
		inCommand("/target/debug/"),
		inCommand("/target/release/"),
	}},
	{port.AppGo, []matcher{
		inCommand("go run"),
		inCommand("gin"),
		inCommand("echo"),
		inCommand("fiber"),
	}},
	{port.AppRuby, []matcher{
		inName("ruby"),
		inCommand("ruby "),
		inCommand("rails "),
		inCommand("puma "),
		inCommand("unicorn "),
		inCommand("bundle exec"),
	}},
	{port.AppPhp, []matcher{
		inName("php"),
		inCommand("php "),
		inCommand("artisan "),
		inCommand("laravel"),
	}},
	{port.AppNginx, []matcher{
		inName("nginx"),
		inCommand("nginx"),
	}},
	{port.AppApache, []matcher{
		inName("httpd"),
		inName("apache"),
		inCommand("httpd"),
		inCommand("apache"),
	}},
}

// Classify returns the application type for a process name and command
// line. An empty command is treated as no command. It never fails; processes
// matching no rule are AppUnknown.
func Classify(name, command string) port.AppType {
	name = strings.ToLower(name)
	command = strings.ToLower(command)

	for _, r := range rules {
		for _, m := range r.matchers {
			if m.match(name, command) {
				return r.app
			}
		}
	}
	return port.AppUnknown
}

// ClassifyEntry classifies e by its process and attaches the result.
func ClassifyEntry(e *port.PortEntry) {
	e.SetAppType(Classify(e.Process.Name, e.Process.Command))
}
