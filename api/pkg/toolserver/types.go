package toolserver

// HealthResponse reports tool server liveness. Status is "ok" once the
// server is ready to take tool calls.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version,omitempty"`
	UptimeSeconds int64  `json:"uptime_seconds,omitempty"`
}

func (h *HealthResponse) Healthy() bool {
	return h.Status == "ok"
}

type SearchRequest struct {
	Query         string `json:"query"`
	Path          string `json:"path,omitempty"`
	CaseSensitive bool   `json:"case_sensitive,omitempty"`
	MaxResults    int    `json:"max_results,omitempty"`
}

type SearchMatch struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Content string `json:"content"`
}

type SearchResponse struct {
	Matches   []SearchMatch `json:"matches"`
	Truncated bool          `json:"truncated,omitempty"`
}

type ReadRequest struct {
	Path      string `json:"path"`
	StartLine int    `json:"start_line,omitempty"`
	EndLine   int    `json:"end_line,omitempty"`
}

type ReadResponse struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type CommandRequest struct {
	Command        string `json:"command"`
	WorkingDir     string `json:"working_dir,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
}

type CommandResponse struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
}

type EditRequest struct {
	Path       string `json:"path"`
	OldText    string `json:"old_text"`
	NewText    string `json:"new_text"`
	ReplaceAll bool   `json:"replace_all,omitempty"`
}

type EditResponse struct {
	Path         string `json:"path"`
	Replacements int    `json:"replacements"`
}

type ExtractArchiveRequest struct {
	ArchivePath string `json:"archive_path"`
	DestPath    string `json:"dest_path"`
}

type CreateArchiveRequest struct {
	SourcePath string `json:"source_path"`
	// Exclude lists path globs left out of the archive, e.g. node_modules.
	Exclude []string `json:"exclude,omitempty"`
}

// ArchiveResponse describes an archive the tool server produced or
// consumed. Path is in-container.
type ArchiveResponse struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
	FileCount int    `json:"file_count,omitempty"`
}

type NpmInstallRequest struct {
	// Packages to add. Empty means install whatever package.json declares.
	Packages []string `json:"packages,omitempty"`
	Dev      bool     `json:"dev,omitempty"`
}

type StartDevServerRequest struct {
	// Command overrides the project's default dev command.
	Command string            `json:"command,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

type DevServerResponse struct {
	Running bool `json:"running"`
	Port    int  `json:"port,omitempty"`
	PID     int  `json:"pid,omitempty"`
}

type PortAllocateRequest struct {
	Preferred int    `json:"preferred,omitempty"`
	Purpose   string `json:"purpose,omitempty"`
}

type PortAllocateResponse struct {
	Port int `json:"port"`
}
