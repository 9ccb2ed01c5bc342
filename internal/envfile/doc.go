// Package envfile synchronizes certificate paths into a server's env
// configuration file.
//
// Apply upserts keys line by line: the first occurrence of a managed key
// is rewritten in place, later duplicates are dropped, missing keys are
// appended, and every other line (comments, blank lines, unrelated keys)
// is preserved byte for byte. The rewrite goes through a temp file and
// rename so a concurrent reader never sees a half-written config.
// Running Apply twice with the same record leaves the file unchanged.
package envfile
