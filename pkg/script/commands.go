// Package script runs line-oriented image editing scripts.
//
// Commands below is the authoritative registry of verbs; the verbs
// themselves are implemented by Apply in apply.go. Keep the two in sync:
// Apply's arity checks and the help text both come from this list.
package script

import (
	"fmt"
	"sort"
	"strings"
)

// ArgSpec describes a single argument for a verb. Fields are textual and
// intended for help output; Apply does the real parsing.
type ArgSpec struct {
	Name        string // human name
	Type        string // "int", "percent", "name", "path"
	Description string
}

// CommandSpec defines a single verb and its positional arguments. Every
// argument is required.
type CommandSpec struct {
	Name        string
	Args        []ArgSpec
	Usage       string // short usage string
	Description string // brief description
}

var (
	argSrc  = ArgSpec{"src", "name", "name of the image to read"}
	argDest = ArgSpec{"dest", "name", "name to store the result under"}
)

func transformSpec(name, description string) CommandSpec {
	return CommandSpec{
		Name:        name,
		Args:        []ArgSpec{argSrc, argDest},
		Usage:       name + " <src> <dest>",
		Description: description,
	}
}

// Commands is the authoritative list of script verbs.
var Commands = []CommandSpec{
	{
		Name:        "load",
		Args:        []ArgSpec{{"path", "path", "image file (.ppm, .png, .jpg, .bmp, .tiff, .gif, .webp)"}, {"name", "name", "name to store the image under"}},
		Usage:       "load <path> <name>",
		Description: "Load an image file and store it under a name.",
	},
	{
		Name:        "save",
		Args:        []ArgSpec{{"path", "path", "destination file; the extension picks the format"}, {"name", "name", "name of the image to write"}},
		Usage:       "save <path> <name>",
		Description: "Write a stored image to a file.",
	},
	transformSpec("red-component", "Greyscale from the red channel."),
	transformSpec("green-component", "Greyscale from the green channel."),
	transformSpec("blue-component", "Greyscale from the blue channel."),
	transformSpec("value-component", "Greyscale from the largest channel."),
	transformSpec("intensity-component", "Greyscale from the truncated channel mean."),
	transformSpec("luma-component", "Greyscale from Rec. 709 luma."),
	transformSpec("horizontal-flip", "Mirror left to right."),
	transformSpec("vertical-flip", "Mirror top to bottom."),
	{
		Name:        "brighten",
		Args:        []ArgSpec{{"value", "int", "positive amount added to every channel"}, argSrc, argDest},
		Usage:       "brighten <value> <src> <dest>",
		Description: "Add a constant to every channel, saturating at the max value.",
	},
	{
		Name:        "darken",
		Args:        []ArgSpec{{"value", "int", "positive amount subtracted from every channel"}, argSrc, argDest},
		Usage:       "darken <value> <src> <dest>",
		Description: "Subtract a constant from every channel, saturating at zero.",
	},
	transformSpec("blur", "3x3 Gaussian blur."),
	transformSpec("sharpen", "5x5 sharpen filter."),
	transformSpec("greyscale", "Luma greyscale through the color matrix."),
	transformSpec("sepia", "Sepia tone through the color matrix."),
	{
		Name:        "downsize",
		Args:        []ArgSpec{{"widthPercent", "percent", "width reduction in [0, 100)"}, {"heightPercent", "percent", "height reduction in [0, 100)"}, argSrc, argDest},
		Usage:       "downsize <widthPercent> <heightPercent> <src> <dest>",
		Description: "Shrink by percentages, averaging neighbours for off-grid samples.",
	},
	transformSpec("histogram", "Render a red/green/blue/intensity histogram chart as a new image."),
	{
		Name:        "preview",
		Args:        []ArgSpec{{"name", "name", "image to show"}},
		Usage:       "preview <name>",
		Description: "Show a stored image inline in the terminal.",
	},
	{
		Name:        "list",
		Usage:       "list",
		Description: "List stored image names.",
	},
	{
		Name:        "help",
		Usage:       "help",
		Description: "Show this list of commands.",
	},
}

var commandIndex = func() map[string]CommandSpec {
	m := make(map[string]CommandSpec, len(Commands))
	for _, c := range Commands {
		m[c.Name] = c
	}
	return m
}()

// Lookup returns the spec for a verb.
func Lookup(name string) (CommandSpec, bool) {
	c, ok := commandIndex[name]
	return c, ok
}

// Names returns all verbs in sorted order.
func Names() []string {
	names := make([]string, 0, len(Commands))
	for _, c := range Commands {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	return names
}

// Usage renders the help listing, one verb per line.
func Usage() string {
	width := 0
	for _, c := range Commands {
		width = max(width, len(c.Usage))
	}
	var sb strings.Builder
	sb.WriteString("Commands available:\n")
	for _, c := range Commands {
		fmt.Fprintf(&sb, "  %-*s  %s\n", width, c.Usage, c.Description)
	}
	sb.WriteString("  q | quit - quit\n")
	return sb.String()
}
