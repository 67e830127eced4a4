// Package notify models transient banners. Each banner is hidden or visible
// until a deadline; showing it again re-arms the deadline and invalidates
// any timer started for the previous showing.
package notify

import "time"

// DefaultDuration is how long a banner stays visible.
const DefaultDuration = 1500 * time.Millisecond

// Kind identifies a banner.
type Kind int

const (
	LinkCopied Kind = iota
	ImageCopied
	ImageSaved
)

// Kinds lists every banner in display order.
var Kinds = []Kind{LinkCopied, ImageCopied, ImageSaved}

// Message returns the banner text.
func (k Kind) Message() string {
	switch k {
	case LinkCopied:
		return "Link Copied"
	case ImageCopied:
		return "Image Copied"
	case ImageSaved:
		return "Image Saved"
	default:
		return ""
	}
}

// Token identifies one showing of a banner. Timers carry the token they
// were armed with; Expire ignores tokens that are no longer current.
type Token struct {
	Kind       Kind
	Generation uint64
}

type banner struct {
	visible    bool
	deadline   time.Time
	generation uint64
}

// Banners holds the state of every banner kind.
type Banners struct {
	duration time.Duration
	state    map[Kind]*banner
}

// New returns banners that stay visible for duration (DefaultDuration when
// non-positive).
func New(duration time.Duration) *Banners {
	if duration <= 0 {
		duration = DefaultDuration
	}
	state := make(map[Kind]*banner, len(Kinds))
	for _, kind := range Kinds {
		state[kind] = &banner{}
	}
	return &Banners{duration: duration, state: state}
}

// Duration returns the visibility window.
func (b *Banners) Duration() time.Duration {
	return b.duration
}

// Show makes kind visible until now+Duration and returns the token the
// caller's timer must present to Expire.
func (b *Banners) Show(kind Kind, now time.Time) Token {
	st := b.get(kind)
	st.generation++
	st.visible = true
	st.deadline = now.Add(b.duration)
	return Token{Kind: kind, Generation: st.generation}
}

// Expire hides the banner if token is its current showing. It reports
// whether the banner was hidden.
func (b *Banners) Expire(token Token) bool {
	st := b.get(token.Kind)
	if !st.visible || st.generation != token.Generation {
		return false
	}
	st.visible = false
	st.deadline = time.Time{}
	return true
}

// Dismiss hides kind immediately and invalidates outstanding timers.
func (b *Banners) Dismiss(kind Kind) {
	st := b.get(kind)
	st.generation++
	st.visible = false
	st.deadline = time.Time{}
}

// Visible reports whether kind is showing.
func (b *Banners) Visible(kind Kind) bool {
	return b.get(kind).visible
}

// Deadline returns when kind hides itself; zero when hidden.
func (b *Banners) Deadline(kind Kind) time.Time {
	return b.get(kind).deadline
}

// Active returns the visible banners in display order.
func (b *Banners) Active() []Kind {
	var kinds []Kind
	for _, kind := range Kinds {
		if b.get(kind).visible {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

func (b *Banners) get(kind Kind) *banner {
	st, ok := b.state[kind]
	if !ok {
		st = &banner{}
		b.state[kind] = st
	}
	return st
}
