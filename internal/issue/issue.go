// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

const (
	DescriptionNotFoundId Id = iota + 1
	DescriptionParseErrorId
	OutputDirNotFoundId
	ConfigLoadFailedId
	RenameCollisionId
	MalformedManifestId
	UnknownAlgorithmId
	WatchFailedId
)

type (
	// Id identifies a catalogued issue.
	Id int

	// MarkdownMsg is the Markdown body shown for an issue.
	MarkdownMsg string

	// HttpLink is a documentation URL.
	HttpLink string

	// Issue is a catalogued failure with Markdown guidance.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
		extLinks []HttpLink
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue as terminal Markdown using the glamour style at
// stylePath ("" picks the style from the environment).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range slices.Concat(i.docLinks, i.extLinks) {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	descriptionNotFoundIssue = &Issue{
		id: DescriptionNotFoundId,
		mdMsg: `
# No build description found!

afterhash needs the bundler's build description (stats file) to know which
units were emitted and under which names.

## Things you can try:
- Write the stats file from your build, for example:
~~~
$ webpack --json > afterhash-stats.json
~~~

- Point afterhash at an existing file:
~~~
$ afterhash run --stats build/stats.json
~~~`,
	}

	descriptionParseErrorIssue = &Issue{
		id: DescriptionParseErrorId,
		mdMsg: `
# The build description could not be read!

The file is not valid JSON, JSONC or YAML, or it does not have the expected shape.

## Expected shape:
~~~json
{
  "outputPath": "dist",
  "output": {
    "filename": "[name].[chunkhash:8].js",
    "chunkFilename": "[id].[chunkhash:8].js"
  },
  "chunks": [
    {"id": 0, "names": ["app"], "hash": "abcdef1234567890", "files": ["app.abcdef12.js"], "entry": true}
  ]
}
~~~

## Things you can try:
- Check the file extension matches its format (.json, .jsonc, .yaml)
- Make sure every chunk has an id`,
	}

	outputDirNotFoundIssue = &Issue{
		id: OutputDirNotFoundId,
		mdMsg: `
# Output directory not found!

The output directory named by the build description does not exist.

## Things you can try:
- Run the build before afterhash
- Override the directory with ` + "`--output`" + `
- Remember that a relative outputPath is resolved against the description's directory`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Things you can try:
- Show where afterhash looks for configuration:
~~~
$ afterhash config path
~~~

- Write a fresh configuration file:
~~~
$ afterhash config init --force
~~~

- Check AFTERHASH_* environment variables for typos`,
	}

	renameCollisionIssue = &Issue{
		id: RenameCollisionId,
		mdMsg: `
# Two assets want the same filename!

A reconciled filename is already taken by another file in the output
directory. Nothing was written for the colliding rename, but renames applied
before it were kept.

## Things you can try:
- Clean the output directory and rebuild
- Make sure the naming template includes ` + "`[name]` or `[id]`" + `
- Use a longer fingerprint, e.g. ` + "`[chunkhash:16]`",
	}

	malformedManifestIssue = &Issue{
		id: MalformedManifestId,
		mdMsg: `
# The JSON manifest is malformed!

The manifest must be a JSON object mapping logical names to emitted
filenames, with string values only. No file was renamed.

## Things you can try:
- Regenerate the manifest by rebuilding
- Check for hand edits or truncated writes
- Set ` + "`manifest_json_name`" + ` if your manifest has another name`,
	}

	unknownAlgorithmIssue = &Issue{
		id: UnknownAlgorithmId,
		mdMsg: `
# Unknown fingerprint algorithm!

## Supported algorithms:
- md5 (default, matches the bundler)
- sha256
- blake3`,
	}

	watchFailedIssue = &Issue{
		id: WatchFailedId,
		mdMsg: `
# Watching stopped!

The file watcher could not keep observing the build description.

## Things you can try:
- Raise the inotify limit on Linux:
~~~
$ sudo sysctl fs.inotify.max_user_watches=524288
~~~

- Check that the watched directory still exists`,
		extLinks: []HttpLink{"https://github.com/fsnotify/fsnotify#faq"},
	}

	issues = map[Id]*Issue{
		descriptionNotFoundIssue.Id():   descriptionNotFoundIssue,
		descriptionParseErrorIssue.Id(): descriptionParseErrorIssue,
		outputDirNotFoundIssue.Id():     outputDirNotFoundIssue,
		configLoadFailedIssue.Id():      configLoadFailedIssue,
		renameCollisionIssue.Id():       renameCollisionIssue,
		malformedManifestIssue.Id():     malformedManifestIssue,
		unknownAlgorithmIssue.Id():      unknownAlgorithmIssue,
		watchFailedIssue.Id():           watchFailedIssue,
	}
)

// Values returns every catalogued issue ordered by id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int {
		return cmp.Compare(a.id, b.id)
	})
}

// Get returns the issue with the given id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
