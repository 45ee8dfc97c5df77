package models

import "time"

// RunSummary describes the outcome of one report generation run
type RunSummary struct {
	RunID           string        // Unique id of the run, used in log lines
	TypeFiles       int           // Type definition files scanned
	CommandFiles    int           // Command files searched
	QualifyingTypes int           // Ptypes whose pattern contains the substring
	MatchedFiles    int           // Command files with at least one match
	Commands        int           // Command entries written to the report
	Output          string        // Report path
	Duration        time.Duration // Wall time of the run
}
