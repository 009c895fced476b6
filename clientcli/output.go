package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Formatter formats results for output.
type Formatter interface {
	FormatHealth(w io.Writer, health *Health) error
	FormatUsers(w io.Writer, users *UserList) error
	FormatUser(w io.Writer, user *User) error
	FormatCalc(w io.Writer, result *CalcResult) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

func (f *HumanFormatter) FormatHealth(w io.Writer, health *Health) error {
	if f.Quiet {
		_, _ = fmt.Fprintln(w, health.Status)
		return nil
	}

	_, _ = fmt.Fprintf(w, "Status:  %s\n", health.Status)
	_, _ = fmt.Fprintf(w, "Uptime:  %s\n", formatUptime(health.Uptime))
	_, _ = fmt.Fprintf(w, "Heap:    %s in use\n", formatSize(int64(health.Memory.HeapInuse)))
	_, _ = fmt.Fprintf(w, "GC runs: %d\n", health.Memory.NumGC)
	if health.Timestamp != "" {
		_, _ = fmt.Fprintf(w, "Time:    %s\n", health.Timestamp)
	}
	return nil
}

func (f *HumanFormatter) FormatUsers(w io.Writer, users *UserList) error {
	if len(users.Users) == 0 {
		_, _ = fmt.Fprintln(w, "No users found")
		return nil
	}

	maxNameLen := 4 // "NAME"
	maxEmailLen := 5
	for i := range users.Users {
		maxNameLen = max(maxNameLen, len(users.Users[i].Name))
		maxEmailLen = max(maxEmailLen, len(users.Users[i].Email))
	}
	maxNameLen = min(maxNameLen, 30)
	maxEmailLen = min(maxEmailLen, 40)

	_, _ = fmt.Fprintf(w, "%-36s  %-*s  %-*s  %s\n", "ID", maxNameLen, "NAME", maxEmailLen, "EMAIL", "CREATED")
	_, _ = fmt.Fprintf(w, "%s  %s  %s  %s\n",
		strings.Repeat("-", 36), strings.Repeat("-", maxNameLen), strings.Repeat("-", maxEmailLen), strings.Repeat("-", 19))

	for i := range users.Users {
		u := &users.Users[i]
		_, _ = fmt.Fprintf(w, "%-36s  %-*s  %-*s  %s\n",
			u.ID.String(),
			maxNameLen, truncate(u.Name, maxNameLen),
			maxEmailLen, truncate(u.Email, maxEmailLen),
			u.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}

	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "\n%d user(s)\n", users.Count)
	}
	return nil
}

func (f *HumanFormatter) FormatUser(w io.Writer, user *User) error {
	if f.Quiet {
		_, _ = fmt.Fprintln(w, user.ID.String())
		return nil
	}
	_, _ = fmt.Fprintf(w, "Created: %s <%s>\n", user.Name, user.Email)
	_, _ = fmt.Fprintf(w, "  ID: %s\n", user.ID)
	return nil
}

func (f *HumanFormatter) FormatCalc(w io.Writer, result *CalcResult) error {
	_, _ = fmt.Fprintf(w, "%v + %v = %v\n", result.X, result.Y, result.Sum)
	_, _ = fmt.Fprintf(w, "%v - %v = %v\n", result.X, result.Y, result.Diff)
	_, _ = fmt.Fprintf(w, "%v * %v = %v\n", result.X, result.Y, result.Product)
	_, _ = fmt.Fprintf(w, "%v / %v = %v\n", result.X, result.Y, result.Quotient)
	return nil
}

func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error {
	if len(profiles) == 0 {
		_, _ = fmt.Fprintln(w, "No profiles configured")
		return nil
	}

	maxNameLen := 4 // "NAME"
	for i := range profiles {
		maxNameLen = max(maxNameLen, len(profiles[i].Name))
	}
	maxNameLen = min(maxNameLen, 20)

	_, _ = fmt.Fprintf(w, "  %-*s  %s\n", maxNameLen, "NAME", "ENDPOINT")
	_, _ = fmt.Fprintf(w, "  %s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", 8))

	for i := range profiles {
		p := &profiles[i]
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}
		_, _ = fmt.Fprintf(w, "%s %-*s  %s\n", marker, maxNameLen, truncate(p.Name, maxNameLen), p.Endpoint)
	}
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) FormatHealth(w io.Writer, health *Health) error {
	return writeJSON(w, health)
}

func (f *JSONFormatter) FormatUsers(w io.Writer, users *UserList) error {
	return writeJSON(w, users)
}

func (f *JSONFormatter) FormatUser(w io.Writer, user *User) error {
	return writeJSON(w, user)
}

func (f *JSONFormatter) FormatCalc(w io.Writer, result *CalcResult) error {
	return writeJSON(w, result)
}

func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return writeJSON(w, output)
}

func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error {
	type jsonProfile struct {
		Name     string `json:"name"`
		Endpoint string `json:"endpoint"`
		Default  bool   `json:"default,omitempty"`
	}

	output := struct {
		Profiles []jsonProfile `json:"profiles"`
	}{
		Profiles: make([]jsonProfile, len(profiles)),
	}

	for i := range profiles {
		output.Profiles[i] = jsonProfile{
			Name:     profiles[i].Name,
			Endpoint: profiles[i].Endpoint,
			Default:  profiles[i].Name == defaultName,
		}
	}

	return writeJSON(w, output)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// formatUptime renders seconds as 1h2m3s.
func formatUptime(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	return d.String()
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
