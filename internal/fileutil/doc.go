// Package fileutil provides directory scanning and file copying used to stage
// CLISH XML files into the scratch workspace.
//
// ScanDirectory lists the files directly inside a directory. Pattern and
// ExcludePattern are regular expressions matched against the file's base name.
//
// Results are absolute paths sorted alphabetically so that every stage of a run
// sees files in the same order. Non-fatal errors are collected in
// ScanResult.Errors and scanning continues; callers that cannot tolerate missing
// files should treat a non-empty Errors slice as a failure.
//
// Listing the type definition files of a board directory:
//
//	result, err := fileutil.ScanDirectory(boardDir, fileutil.ScanOptions{
//	    Pattern: "^types-",
//	})
//
// Everything else in the same directory:
//
//	result, err := fileutil.ScanDirectory(boardDir, fileutil.ScanOptions{
//	    ExcludePattern: "^types-",
//	})
//
// CopyFile copies a single file into a destination directory, keeping its base name
// and permission bits.
package fileutil
