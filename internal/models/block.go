package models

// BlockKind is the closed set of content block variants the renderer
// understands. Anything else decodes to BlockUnsupported and renders to
// an empty fragment.
type BlockKind int

const (
	BlockUnsupported BlockKind = iota
	BlockParagraph
	BlockHeading1
	BlockHeading2
	BlockHeading3
	BlockBulleted
	BlockNumbered
	BlockQuote
	BlockCode
	BlockImage
)

// ImageSource distinguishes externally linked images from ones hosted by
// the remote system.
type ImageSource int

const (
	ImageNone ImageSource = iota
	// ImageExternal is a plain absolute URL supplied by the author.
	ImageExternal
	// ImageHosted is a file stored by the remote system. Rendering it is
	// delegated to the image localization pass.
	ImageHosted
)

// Block is one structural unit of a page body: a tagged variant over
// BlockKind with the payload fields the active kind uses.
type Block struct {
	Kind BlockKind
	// Text is the concatenation of the block's plain-text runs, inline
	// styling discarded.
	Text string
	// Language tags a code block's fence. May be empty.
	Language string
	// ImageKind and ImageURL are set only for BlockImage.
	ImageKind ImageSource
	ImageURL  string
}
