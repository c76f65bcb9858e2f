package align

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"loom/internal/logging"
	"loom/internal/services"
	"loom/internal/services/pyalign"
	"loom/internal/textenc"
	"loom/internal/textutil"
	"loom/internal/timeline"
)

// Selector decides which labels of a source tier are aligned.
type Selector func(timeline.Label) bool

// DefaultSelector selects labels carrying at least one non-whitespace rune.
func DefaultSelector(l timeline.Label) bool {
	return strings.TrimSpace(l.Text) != ""
}

// Source pairs a tier to align with the audio channel to read.
type Source struct {
	Tier    *timeline.Tier
	Channel int
}

// TierPair holds the phone and word tiers produced for one source tier.
type TierPair struct {
	Phone *timeline.Tier
	Word  *timeline.Tier
}

// Tiers returns the pair in conventional phone-then-word order.
func (p TierPair) Tiers() []*timeline.Tier {
	return []*timeline.Tier{p.Phone, p.Word}
}

// SegmentResult reports the outcome of one aligned segment to an Observer.
type SegmentResult struct {
	Index   int
	Tier    string
	T1      float64
	T2      float64
	Text    string
	Err     error
	Elapsed time.Duration
}

// Observer receives per-segment outcomes as the driver progresses.
type Observer func(SegmentResult)

// Option adjusts driver construction.
type Option func(*Driver)

// WithLogger attaches a logger for progress and diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithSelector overrides the default label selector.
func WithSelector(sel Selector) Option {
	return func(d *Driver) {
		if sel != nil {
			d.selector = sel
		}
	}
}

// WithObserver registers a per-segment outcome callback.
func WithObserver(obs Observer) Option {
	return func(d *Driver) {
		d.observer = obs
	}
}

// WithTranscriptEncoding sets the encoding for transient transcript files.
func WithTranscriptEncoding(name string) Option {
	return func(d *Driver) {
		d.encoding = strings.TrimSpace(name)
	}
}

// Driver folds per-segment aligner output into continuous tiers.
type Driver struct {
	aligner  pyalign.Aligner
	scratch  string
	logger   *slog.Logger
	selector Selector
	observer Observer
	encoding string
}

// New constructs a Driver writing transient artifacts under scratchDir.
func New(aligner pyalign.Aligner, scratchDir string, opts ...Option) (*Driver, error) {
	if aligner == nil {
		return nil, services.Wrap(services.ErrValidation, "align", "configure", "aligner is required", nil)
	}
	if strings.TrimSpace(scratchDir) == "" {
		return nil, services.Wrap(services.ErrValidation, "align", "configure", "scratch directory is required", nil)
	}
	d := &Driver{
		aligner:  aligner,
		scratch:  scratchDir,
		logger:   logging.NewNop(),
		selector: DefaultSelector,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// AlignTier aligns every selected label of src against audioPath and returns
// contiguous phone and word tiers spanning [src.Start, src.End]. A failed
// segment becomes one error-status label in both tiers and the run
// continues; overlapping input segments abort.
func (d *Driver) AlignTier(ctx context.Context, src *timeline.Tier, audioPath string, channel int) (TierPair, error) {
	if src == nil {
		return TierPair{}, services.Wrap(services.ErrValidation, "align", "align tier", "source tier is required", nil)
	}
	if src.Class != timeline.ClassInterval {
		return TierPair{}, services.Wrap(services.ErrValidation, "align", "align tier",
			fmt.Sprintf("tier %q is a point tier; only interval tiers carry alignable segments", src.Name), nil)
	}
	if strings.TrimSpace(audioPath) == "" {
		return TierPair{}, services.Wrap(services.ErrValidation, "align", "align tier", "audio path is required", nil)
	}

	ctx = services.WithTier(ctx, src.Name)
	logger := logging.WithContext(ctx, d.logger)

	phone := timeline.NewIntervalTier(pyalign.PhoneTier, src.Start, src.End)
	word := timeline.NewIntervalTier(pyalign.WordTier, src.Start, src.End)

	index := -1
	for _, label := range src.Labels {
		if !d.selector(label) {
			continue
		}
		index++
		if err := ctx.Err(); err != nil {
			return TierPair{}, err
		}
		if label.T2 < label.T1-timeline.Epsilon {
			return TierPair{}, services.Wrap(services.ErrValidation, "align", "align tier",
				fmt.Sprintf("segment %d of tier %q ends before it starts [%s, %s]",
					index, src.Name, timeline.FormatTime(label.T1), timeline.FormatTime(label.T2)), nil)
		}

		// Gap-fill both accumulators up to the segment start. A segment
		// beginning before the accumulated end is overlapping input.
		for _, out := range []*timeline.Tier{phone, word} {
			if _, err := out.GapTo(label.T1); err != nil {
				return TierPair{}, services.Wrap(services.ErrOverlap, "align", "align tier",
					fmt.Sprintf("segment %d of tier %q", index, src.Name), err)
			}
		}

		segCtx := services.WithSegment(ctx, index)
		segLogger := logging.WithContext(segCtx, d.logger)

		started := time.Now()
		res, segErr := d.invoke(segCtx, audioPath, src.Name, index, channel, label)
		if segErr == nil {
			segErr = foldable(res.Phone, label.T1, label.T2)
		}
		if segErr == nil {
			segErr = foldable(res.Word, label.T1, label.T2)
		}
		elapsed := time.Since(started)

		if segErr != nil {
			if errors.Is(segErr, services.ErrConfiguration) {
				return TierPair{}, segErr
			}
			d.observe(SegmentResult{Index: index, Tier: src.Name, T1: label.T1, T2: label.T2, Text: label.Text, Err: segErr, Elapsed: elapsed})
			if err := ctx.Err(); err != nil {
				return TierPair{}, err
			}
			failed := timeline.Label{
				T1:     label.T1,
				T2:     label.T2,
				Status: timeline.StatusError,
				Detail: segErr.Error(),
			}
			for _, out := range []*timeline.Tier{phone, word} {
				if err := out.Append(failed); err != nil {
					return TierPair{}, services.Wrap(services.ErrOverlap, "align", "align tier",
						fmt.Sprintf("record failure for segment %d of tier %q", index, src.Name), err)
				}
			}
			segLogger.Error("segment alignment failed",
				logging.Float64("t1", label.T1),
				logging.Float64("t2", label.T2),
				logging.Error(segErr),
			)
			continue
		}

		if err := foldInto(phone, res.Phone); err != nil {
			return TierPair{}, services.Wrap(services.ErrOverlap, "align", "align tier",
				fmt.Sprintf("fold segment %d of tier %q", index, src.Name), err)
		}
		if err := foldInto(word, res.Word); err != nil {
			return TierPair{}, services.Wrap(services.ErrOverlap, "align", "align tier",
				fmt.Sprintf("fold segment %d of tier %q", index, src.Name), err)
		}
		d.observe(SegmentResult{Index: index, Tier: src.Name, T1: label.T1, T2: label.T2, Text: label.Text, Elapsed: elapsed})
		segLogger.Info("segment aligned",
			logging.Int("phones", len(res.Phone.Labels)),
			logging.Int("words", len(res.Word.Labels)),
			logging.Duration("elapsed", elapsed),
		)
	}

	if err := ctx.Err(); err != nil {
		return TierPair{}, err
	}
	for _, out := range []*timeline.Tier{phone, word} {
		if _, err := out.CloseOut(); err != nil {
			return TierPair{}, services.Wrap(services.ErrOverlap, "align", "close out",
				fmt.Sprintf("tier %q", out.Name), err)
		}
	}
	logger.Info("tier aligned",
		logging.Int("segments", index+1),
		logging.Int("phone_labels", len(phone.Labels)),
		logging.Int("word_labels", len(word.Labels)),
	)
	return TierPair{Phone: phone, Word: word}, nil
}

// AlignTiers aligns several source tiers, each against its own channel. With
// more than one source the output tiers are renamed <source>_phone and
// <source>_word; a single source keeps the plain names.
func (d *Driver) AlignTiers(ctx context.Context, sources []Source, audioPath string) ([]TierPair, error) {
	if len(sources) == 0 {
		return nil, services.Wrap(services.ErrValidation, "align", "align tiers", "no source tiers selected", nil)
	}
	pairs := make([]TierPair, 0, len(sources))
	for _, src := range sources {
		pair, err := d.AlignTier(ctx, src.Tier, audioPath, src.Channel)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, pair)
	}
	if len(pairs) > 1 {
		for i, src := range sources {
			pairs[i].Phone.Name = src.Tier.Name + "_" + pyalign.PhoneTier
			pairs[i].Word.Name = src.Tier.Name + "_" + pyalign.WordTier
		}
	}
	return pairs, nil
}

// File assembles aligned pairs into a label file, phone before word per pair.
func File(pairs []TierPair, encoding string) *timeline.LabelFile {
	file := &timeline.LabelFile{Encoding: encoding}
	for _, pair := range pairs {
		file.Tiers = append(file.Tiers, pair.Tiers()...)
	}
	return file
}

func (d *Driver) observe(result SegmentResult) {
	if d.observer != nil {
		d.observer(result)
	}
}

// invoke runs the aligner for one segment, managing the transient transcript
// and output artifacts. Unique names keep concurrent runs in the same
// scratch directory from colliding.
func (d *Driver) invoke(ctx context.Context, audioPath, tierName string, index, channel int, l timeline.Label) (pyalign.Result, error) {
	base := fmt.Sprintf("seg-%s-%03d-%s", textutil.SanitizeToken(tierName), index, uuid.NewString())
	transcriptPath := filepath.Join(d.scratch, base+".txt")
	outPath := filepath.Join(d.scratch, base+".TextGrid")

	if err := d.writeTranscript(transcriptPath, l.Text); err != nil {
		return pyalign.Result{}, services.Wrap(services.ErrConfiguration, "align", "write transcript",
			fmt.Sprintf("scratch directory %s", d.scratch), err)
	}
	defer func() {
		_ = os.Remove(transcriptPath)
		_ = os.Remove(outPath)
	}()

	return d.aligner.Align(ctx, pyalign.Request{
		AudioPath:      audioPath,
		TranscriptPath: transcriptPath,
		OutPath:        outPath,
		T1:             l.T1,
		T2:             l.T2,
		Channel:        channel,
	})
}

func (d *Driver) writeTranscript(path, text string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w, err := textenc.NewWriter(f, d.encoding)
	if err != nil {
		f.Close()
		return err
	}
	if _, err := w.Write([]byte(text + "\n")); err != nil {
		w.Close()
		f.Close()
		return err
	}
	if err := w.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// foldable verifies a returned tier can be appended without mutating
// anything: labels ordered, none inverted, none past the segment end. A
// violation is the segment's failure, not the run's.
func foldable(t *timeline.Tier, from, to float64) error {
	if t == nil {
		return errors.New("aligner result tier missing")
	}
	if len(t.Labels) == 0 {
		return fmt.Errorf("aligner produced no %s labels", t.Name)
	}
	end := from
	for _, l := range t.Labels {
		if l.T2 < l.T1-timeline.Epsilon {
			return fmt.Errorf("aligner label %q [%s, %s] ends before it starts",
				l.Text, timeline.FormatTime(l.T1), timeline.FormatTime(l.T2))
		}
		if l.T1 < end-timeline.Epsilon {
			return fmt.Errorf("aligner label %q at %s overlaps earlier output ending at %s",
				l.Text, timeline.FormatTime(l.T1), timeline.FormatTime(end))
		}
		if l.T2 > end {
			end = l.T2
		}
	}
	if end > to+timeline.Epsilon {
		return fmt.Errorf("aligner output ends at %s, past segment end %s",
			timeline.FormatTime(end), timeline.FormatTime(to))
	}
	return nil
}

func foldInto(dst *timeline.Tier, seg *timeline.Tier) error {
	for _, l := range seg.Labels {
		if _, err := dst.GapTo(l.T1); err != nil {
			return err
		}
		if err := dst.Append(l); err != nil {
			return err
		}
	}
	return nil
}
