// AtlasPack packs sprite images into a single texture atlas and writes the
// frame descriptor game engines need to find each sprite again.
//
// Build:
//   go build -o atlaspack ./cmd/atlaspack
//
// Typical use:
//   atlaspack new ui.aap --padding 1
//   atlaspack add ui.aap sprites/
//   atlaspack export ui.aap --format json --report

package main

import "github.com/piwi3910/atlaspack/internal/cli"

func main() {
	cli.Execute()
}
