package models

// FileCommands holds the commands found in one command file
type FileCommands struct {
	File     string    // Base name of the command file
	Commands StringSet // Names of the commands using a qualifying ptype
}

// Report maps command files to their matching commands, in file scan order
type Report struct {
	Files []FileCommands
}

// Add appends the commands found in file. Files without matches are not recorded.
func (r *Report) Add(file string, commands StringSet) {
	if commands.Len() == 0 {
		return
	}
	r.Files = append(r.Files, FileCommands{File: file, Commands: commands})
}

// TotalCommands returns the number of command entries across all files.
func (r *Report) TotalCommands() int {
	total := 0
	for _, fc := range r.Files {
		total += fc.Commands.Len()
	}
	return total
}
