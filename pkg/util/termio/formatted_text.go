package termio

// FormattedText represents a short run of text tagged with an (optional)
// ANSI escape used to colourise it when written to a terminal.  This is
// deliberately minimal compared with a full cell-grid renderer: the
// known-bits explorer only ever needs to colour individual bit characters
// inline with surrounding plain text.
type FormattedText struct {
	text   string
	escape *AnsiEscape
}

// NewText constructs a plain (unformatted) chunk of text.
func NewText(text string) FormattedText {
	return FormattedText{text, nil}
}

// NewColouredText constructs a chunk of text coloured with the given escape.
func NewColouredText(text string, escape AnsiEscape) FormattedText {
	return FormattedText{text, &escape}
}

// Len returns the number of (uncoloured) characters in this chunk.
func (p FormattedText) Len() uint {
	return uint(len(p.text))
}

// Clip truncates this chunk of text to the region [start,end).
func (p FormattedText) Clip(start, end uint) FormattedText {
	n := uint(len(p.text))
	//
	if start > n {
		start = n
	}
	//
	if end > n {
		end = n
	}
	//
	if start > end {
		start = end
	}
	//
	return FormattedText{p.text[start:end], p.escape}
}

// Bytes renders this chunk, including any colouring escape codes, ready to be
// written directly to a terminal.
func (p FormattedText) Bytes() []byte {
	if p.escape == nil {
		return []byte(p.text)
	}
	//
	reset := ResetAnsiEscape().Build()
	//
	return []byte(p.escape.Build() + p.text + reset)
}
