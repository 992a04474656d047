package pipeline

import "strings"

// FallbackFunctionalSpec is returned as the functional document when the
// generation output lacks SplitMarker.
const FallbackFunctionalSpec = `# Functional Specification

## Overview

The functional specification could not be separated from the generated output. The technical specification contains the complete analysis of this project.

## Features

Refer to the technical specification for the components and capabilities identified in the repository.

## User Workflows

No user workflows were extracted.

## Acceptance Criteria

No acceptance criteria were extracted.
`

// FallbackTechnicalSpec replaces an empty technical document so a run
// always yields two documents.
const FallbackTechnicalSpec = `# Technical Specification

## Overview

The generation stage returned no technical content for this project.

## Architecture

No architecture details were extracted.
`

// Split divides combined at the first occurrence of marker. Both halves are
// trimmed. Without the marker the whole text is technical and the functional
// half is FallbackFunctionalSpec.
func Split(combined, marker string) (technical, functional string) {
	if marker != "" {
		if before, after, ok := strings.Cut(combined, marker); ok {
			return strings.TrimSpace(before), strings.TrimSpace(after)
		}
	}
	return strings.TrimSpace(combined), FallbackFunctionalSpec
}
