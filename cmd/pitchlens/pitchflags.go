package main

import (
	"github.com/spf13/cobra"

	"github.com/leofalp/pitchlens/patterns/pitch"
)

// pitchFlags are the descriptive fields shared by analyze and analyze-media.
type pitchFlags struct {
	id            string
	title         string
	description   string
	industry      string
	targetMarket  string
	businessModel string
	funding       string
	language      string
}

func (f *pitchFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.id, "id", "", "pitch ID (default pitch_<unix time>)")
	fs.StringVar(&f.title, "title", "", "pitch title")
	fs.StringVar(&f.description, "description", "", "one-line description")
	fs.StringVar(&f.industry, "industry", "", "industry sector")
	fs.StringVar(&f.targetMarket, "target-market", "", "target market")
	fs.StringVar(&f.businessModel, "business-model", "", "business model")
	fs.StringVar(&f.funding, "funding", "", "funding amount requested")
	fs.StringVar(&f.language, "language", pitch.DefaultLanguage, "ISO 639-3 language code of spoken pitches")
}

func (f *pitchFlags) pitch() pitch.Pitch {
	return pitch.Pitch{
		ID:            f.id,
		Title:         f.title,
		Description:   f.description,
		Industry:      f.industry,
		TargetMarket:  f.targetMarket,
		BusinessModel: f.businessModel,
		FundingAmount: f.funding,
		LanguageCode:  f.language,
	}
}
