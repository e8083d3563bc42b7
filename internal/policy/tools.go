package policy

// writeTools edit files directly and so always have a file path to record.
var writeTools = map[string]bool{
	"Write":     true,
	"Edit":      true,
	"MultiEdit": true,
}

// IsWriteTool reports whether name is a file-writing tool.
func IsWriteTool(name string) bool {
	return writeTools[name]
}

// IsGuarded reports whether name is a tool the pre-tool gate looks at:
// the shell tool plus every write tool. Only the shell tool can be denied.
func IsGuarded(name string) bool {
	return name == BashTool || IsWriteTool(name)
}
