package formatter

import (
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/ctree-dev/ctree/internal/core/tree"
)

var dumper = spew.ConfigState{
	Indent:                  "  ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Dump renders a Go-syntax debug dump of the nested tree or value.
func Dump(value any, opts Options) (string, error) {
	if m, ok := value.(tree.Mapping); ok {
		if opts.Rare {
			value = tree.Rarefy(m).Map()
		} else {
			value = m.Items().Map()
		}
	}
	return strings.TrimSuffix(dumper.Sdump(value), "\n"), nil
}
