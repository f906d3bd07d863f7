package parser

type eventKind uint8

const (
	eventStart eventKind = iota
	eventFinish
	eventError
	eventTombstone
)

// event is one entry of the flat parse log. Start events of preceded
// markers point forward to the start event of their new parent.
type event struct {
	kind          eventKind
	node          NodeKind
	pos           int
	forwardParent int
	message       string
	span          Span
}

// Builder records the parser's markers as a flat event list and converts it
// into a tree once parsing is done. Tokens are recorded as they are consumed,
// so event positions are indexes into the consumed-token list.
type Builder struct {
	tokens []Token
	events []event
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Advance records a consumed token.
func (b *Builder) Advance(tok Token) {
	b.tokens = append(b.tokens, tok)
}

// Mark opens a node span at the current position.
func (b *Builder) Mark() Marker {
	b.events = append(b.events, event{kind: eventStart, pos: len(b.tokens)})
	return Marker{b: b, start: len(b.events) - 1}
}

// Error attaches an error annotation at the current position. span is the
// source range the message refers to, usually the token under the cursor.
func (b *Builder) Error(message string, span Span) {
	b.events = append(b.events, event{kind: eventError, pos: len(b.tokens), message: message, span: span})
}

type Marker struct {
	b     *Builder
	start int
}

// Complete closes the span as a node of the given kind.
func (m Marker) Complete(kind NodeKind) CompletedMarker {
	m.b.events[m.start].node = kind
	m.b.events = append(m.b.events, event{kind: eventFinish, pos: len(m.b.tokens)})
	return CompletedMarker{b: m.b, start: m.start}
}

// Discard abandons the span. Nodes completed inside it are kept and attach
// to the enclosing node.
func (m Marker) Discard() {
	m.b.events[m.start].kind = eventTombstone
}

// Error closes the span as an error node carrying message.
func (m Marker) Error(message string) CompletedMarker {
	m.b.events[m.start].message = message
	return m.Complete(KindError)
}

type CompletedMarker struct {
	b     *Builder
	start int
}

func (c CompletedMarker) Kind() NodeKind {
	return c.b.events[c.start].node
}

// Precede opens a new marker that will enclose c and everything parsed
// after it until the new marker is completed.
func (c CompletedMarker) Precede() Marker {
	m := c.b.Mark()
	c.b.events[m.start].pos = c.b.events[c.start].pos
	c.b.events[c.start].forwardParent = m.start - c.start
	return m
}

// Tree converts the event list into a node tree. Consumed tokens that no
// marker covers end up as leaves of the innermost enclosing node. eof is the
// position used for spans of empty nodes at the end of input. Errors are
// returned in the order they were reported.
func (b *Builder) Tree(eof Position) (*Node, []*Error) {
	events := make([]event, len(b.events))
	copy(events, b.events)

	var (
		stack  []*Node
		root   *Node
		errs   []*Error
		next   int
		chain  []int
		starts []int
	)

	top := func() *Node {
		if len(stack) == 0 {
			if root == nil {
				root = &Node{Kind: KindFile}
				stack = append(stack, root)
			} else {
				return root
			}
		}
		return stack[len(stack)-1]
	}
	positionAt := func(pos int) Position {
		if pos < len(b.tokens) {
			return b.tokens[pos].Span.Start
		}
		return eof
	}
	flush := func(pos int) {
		for next < pos && next < len(b.tokens) {
			tok := b.tokens[next]
			top().AddChild(&Node{Kind: KindToken, Span: tok.Span, Token: &tok})
			next++
		}
	}

	for i := range events {
		ev := events[i]
		switch ev.kind {
		case eventStart:
			chain = chain[:0]
			for j := i; ; {
				if events[j].kind == eventStart {
					chain = append(chain, j)
				}
				if events[j].forwardParent == 0 {
					break
				}
				j += events[j].forwardParent
			}
			if len(stack) > 0 {
				flush(ev.pos)
			}
			for k := len(chain) - 1; k >= 0; k-- {
				e := &events[chain[k]]
				node := &Node{Kind: e.node, Span: Span{Start: positionAt(ev.pos)}}
				if e.message != "" {
					node.Error = &Error{Message: e.message}
				}
				if len(stack) > 0 {
					stack[len(stack)-1].AddChild(node)
				} else if root == nil {
					root = node
				}
				stack = append(stack, node)
				starts = append(starts, ev.pos)
				if k > 0 {
					e.kind = eventTombstone
				}
			}
		case eventFinish:
			flush(ev.pos)
			node := stack[len(stack)-1]
			start := starts[len(starts)-1]
			stack = stack[:len(stack)-1]
			starts = starts[:len(starts)-1]
			if ev.pos > start {
				node.Span.End = b.tokens[ev.pos-1].Span.End
			} else {
				node.Span.End = node.Span.Start
			}
			if node.Error != nil {
				node.Error.Span = node.Span
				errs = append(errs, node.Error)
			}
		case eventError:
			flush(ev.pos)
			e := &Error{Message: ev.message, Span: ev.span}
			top().AddChild(&Node{Kind: KindError, Span: ev.span, Error: e})
			errs = append(errs, e)
		}
	}

	if root == nil {
		root = &Node{Kind: KindFile, Span: Span{Start: eof, End: eof}}
	}
	for next < len(b.tokens) {
		tok := b.tokens[next]
		root.AddChild(&Node{Kind: KindToken, Span: tok.Span, Token: &tok})
		root.Span.End = tok.Span.End
		next++
	}
	return root, errs
}

// consumed returns the number of tokens recorded so far.
func (b *Builder) consumed() int {
	return len(b.tokens)
}
