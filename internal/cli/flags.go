package cli

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile      string
	DataDir      string
	BatchFile    string
	Context      string
	Mode         string
	PartOfSpeech string
	SkipAudio    bool
	SkipImages   bool

	// Operations
	Backfill       bool
	BackfillBudget int // seconds
	GenerateAnki   bool
	AnkiCSV        bool
	DeckName       string
	ListModels     bool
	SweepMedia     bool
	SweepDryRun    bool

	// Gemini flags
	GeminiModel string

	// Audio flags
	AudioProvider       string
	AudioFormat         string
	GoogleWordVoice     string
	GoogleSentenceVoice string
	OpenAIModel         string
	OpenAIVoice         string
	OpenAISpeed         float64
	OpenAIInstruction   string

	// Image flags
	ImageAPI           string
	OpenAIImageModel   string
	OpenAIImageSize    string
	OpenAIImageQuality string
	OpenAIImageStyle   string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		Mode:                "general_vocab",
		BackfillBudget:      270,
		DeckName:            "Vocabulary",
		GeminiModel:         "gemini-2.5-pro",
		AudioProvider:       "google",
		AudioFormat:         "mp3",
		GoogleWordVoice:     "en-US-Studio-O",
		GoogleSentenceVoice: "en-US-Chirp3-HD-Leda",
		OpenAIModel:         "tts-1",
		OpenAIVoice:         "nova",
		OpenAISpeed:         1.0,
		ImageAPI:            "customsearch",
		OpenAIImageModel:    "dall-e-3",
		OpenAIImageSize:     "1024x1024",
		OpenAIImageQuality:  "standard",
		OpenAIImageStyle:    "natural",
	}
}
