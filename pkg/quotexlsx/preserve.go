package quotexlsx

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// Partition splits the parts of the final package by which archive owns them.
type Partition struct {
	// Generated parts are copied from the generated archive.
	Generated []string
	// Shared parts exist in both archives; the template copy wins.
	Shared []string
	// TemplateOnly parts are template assets the generated archive dropped.
	TemplateOnly []string
}

// Len returns the number of parts in the final package.
func (p Partition) Len() int {
	return len(p.Generated) + len(p.Shared) + len(p.TemplateOnly)
}

// TemplateOwned reports whether a part must be taken from the template:
// media and drawing parts. Package relationships, content types and
// worksheet relationships always stay with the generated archive.
func TemplateOwned(name string) bool {
	switch {
	case name == "[Content_Types].xml",
		strings.HasPrefix(name, "_rels/"),
		strings.HasPrefix(name, "xl/_rels/"),
		strings.HasPrefix(name, "xl/worksheets/_rels/"):
		return false
	}
	return strings.HasPrefix(name, "xl/media/") || strings.HasPrefix(name, "xl/drawings/")
}

// PartitionParts classifies part names. Order follows the generated archive
// for Generated and Shared, and the template for TemplateOnly.
func PartitionParts(templateNames, generatedNames []string) Partition {
	inTemplate := make(map[string]bool, len(templateNames))
	for _, n := range templateNames {
		inTemplate[n] = true
	}
	inGenerated := make(map[string]bool, len(generatedNames))

	var p Partition
	for _, n := range generatedNames {
		if inGenerated[n] {
			continue
		}
		inGenerated[n] = true
		if TemplateOwned(n) && inTemplate[n] {
			p.Shared = append(p.Shared, n)
			continue
		}
		p.Generated = append(p.Generated, n)
	}
	for _, n := range templateNames {
		if !inGenerated[n] && TemplateOwned(n) {
			p.TemplateOnly = append(p.TemplateOnly, n)
		}
	}
	return p
}

// Repackage assembles the final package from the generated archive and the
// template. Generated parts are written first, in their original order, with
// template-owned parts replaced by the template copy; template-only assets
// follow. Every template copy passes through shifter. Anchor decode failures
// keep the part unmodified; any write failure aborts and no bytes are
// returned.
func Repackage(ctx context.Context, template, generated *Archive, shifter *AnchorShifter) ([]byte, error) {
	log := zerolog.Ctx(ctx)
	parts := PartitionParts(template.Names(), generated.Names())
	shared := make(map[string]bool, len(parts.Shared))
	for _, n := range parts.Shared {
		shared[n] = true
	}

	w := NewArchiveWriter()
	fromTemplate := func(name string) error {
		data, err := template.Read(name)
		if err != nil {
			return &ArchiveWriteError{Part: name, Err: err}
		}
		if shifter != nil {
			shifted, err := shifter.Shift(name, data)
			if err != nil {
				log.Warn().Err(err).Str("part", name).Msg("anchors left unshifted")
			}
			data = shifted
		}
		return w.Write(name, data)
	}

	for _, name := range generated.Names() {
		if shared[name] {
			if err := fromTemplate(name); err != nil {
				return nil, err
			}
			continue
		}
		data, err := generated.Read(name)
		if err != nil {
			return nil, &ArchiveWriteError{Part: name, Err: err}
		}
		if err := w.Write(name, data); err != nil {
			return nil, err
		}
	}
	for _, name := range parts.TemplateOnly {
		if err := fromTemplate(name); err != nil {
			return nil, err
		}
	}

	log.Debug().
		Int("generated", len(parts.Generated)).
		Int("shared", len(parts.Shared)).
		Int("template_only", len(parts.TemplateOnly)).
		Msg("package reassembled")
	return w.Bytes()
}
