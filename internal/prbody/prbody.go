// Package prbody encodes submission metadata into a pull request body and
// decodes it back. The body text is the only persistence this system has, so
// Encode and Decode must round-trip losslessly for the fields defined here.
//
// The format is line oriented: a handful of labeled lines followed by a file
// list. The decoder ignores lines it does not recognize, so a maintainer
// editing the body by hand cannot break the listing as long as the labeled
// lines survive.
package prbody

import (
	"strings"
)

const (
	submitterPrefix  = "Submitter:"
	commentsPrefix   = "Comments:"
	targetPathPrefix = "Target path:"
	filesPrefix      = "Files:"
	fileItemPrefix   = "- "
)

// Metadata is the structured record carried in a submission PR body.
type Metadata struct {
	Submitter  string
	Comments   string
	TargetPath string
	Files      []string
}

// Encode renders metadata as a PR body. Comments are collapsed to a single
// line first; the line-oriented format cannot carry embedded newlines and the
// round-trip invariant matters more than comment formatting.
func Encode(meta Metadata) string {
	var b strings.Builder

	b.WriteString("New battle result submission.\n\n")
	b.WriteString(submitterPrefix + " " + meta.Submitter + "\n")
	b.WriteString(commentsPrefix + " " + flatten(meta.Comments) + "\n")
	b.WriteString(targetPathPrefix + " " + meta.TargetPath + "\n")
	b.WriteString("\n" + filesPrefix + "\n")
	for _, name := range meta.Files {
		b.WriteString(fileItemPrefix + name + "\n")
	}

	return b.String()
}

// Decode scans a PR body for the labeled lines written by Encode. Unknown
// lines are skipped; a body with none of the labels decodes to a zero
// Metadata rather than an error.
func Decode(body string) Metadata {
	var meta Metadata
	inFiles := false

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")

		switch {
		case strings.HasPrefix(line, submitterPrefix):
			meta.Submitter = strings.TrimSpace(strings.TrimPrefix(line, submitterPrefix))
			inFiles = false
		case strings.HasPrefix(line, commentsPrefix):
			meta.Comments = strings.TrimSpace(strings.TrimPrefix(line, commentsPrefix))
			inFiles = false
		case strings.HasPrefix(line, targetPathPrefix):
			meta.TargetPath = strings.TrimSpace(strings.TrimPrefix(line, targetPathPrefix))
			inFiles = false
		case strings.HasPrefix(line, filesPrefix):
			inFiles = true
		case inFiles && strings.HasPrefix(line, fileItemPrefix):
			meta.Files = append(meta.Files, strings.TrimSpace(strings.TrimPrefix(line, fileItemPrefix)))
		}
	}

	return meta
}

// flatten collapses newlines to spaces so the comment stays one labeled line.
func flatten(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
