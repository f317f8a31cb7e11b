// Package pitch analyses and generates startup pitches on top of the
// structured-response engine.
//
// [Analyzer] scores a pitch (text, or audio and video through a
// speech.Transcriber) against [AnalysisSchema]. [Generator] drafts a pitch
// for a topic against [PitchSchema], [Presenter] rewrites it as a slide and
// [Narrator] reads either result aloud.
//
// Every operation returns a fully populated result when the remote call
// succeeds, whatever shape the model answered in; see core/engine for the
// recovery rules. Errors are limited to fatal remote failures and
// cancellation.
package pitch
