// Package catalog provides the static read-only catalog of preset speakers,
// synthesis modes, model sizes and languages exposed by the engine.
package catalog

// Speaker describes one built-in engine voice.
type Speaker struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Language    string `json:"language"`
}

// Mode describes one synthesis mode for the configuration endpoint.
type Mode struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Model describes one engine checkpoint size.
type Model struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var presetSpeakers = []Speaker{
	{ID: "Ryan", Name: "Ryan", Description: "Dynamic male, strong rhythm", Language: "English"},
	{ID: "Aiden", Name: "Aiden", Description: "Sunny American male, clear midrange", Language: "English"},
	{ID: "Vivian", Name: "Vivian", Description: "Bright, slightly edgy young female", Language: "Chinese"},
	{ID: "Serena", Name: "Serena", Description: "Warm, gentle young female", Language: "Chinese"},
	{ID: "Uncle_Fu", Name: "Uncle Fu", Description: "Seasoned male, low mellow timbre", Language: "Chinese"},
	{ID: "Dylan", Name: "Dylan", Description: "Youthful Beijing male, clear natural", Language: "Chinese (Beijing)"},
	{ID: "Eric", Name: "Eric", Description: "Lively Chengdu male, slightly husky", Language: "Chinese (Sichuan)"},
	{ID: "Ono_Anna", Name: "Ono Anna", Description: "Playful Japanese female, light nimble", Language: "Japanese"},
	{ID: "Sohee", Name: "Sohee", Description: "Warm Korean female, rich emotion", Language: "Korean"},
}

var modes = []Mode{
	{ID: "custom_voice", Name: "Custom Voice", Description: "Use preset voices with optional style instructions"},
	{ID: "voice_clone", Name: "Voice Clone", Description: "Clone a voice from a reference audio"},
	{ID: "voice_design", Name: "Voice Design", Description: "Design a voice using natural language description"},
}

var models = []Model{
	{ID: "0.6B", Name: "0.6B (Faster)", Description: "Smaller model, faster generation"},
	{ID: "1.7B", Name: "1.7B (Better Quality)", Description: "Larger model, better quality"},
}

var languages = []string{
	"Auto", "English", "Chinese", "Japanese", "Korean",
	"German", "French", "Russian", "Portuguese", "Spanish", "Italian",
}

var speakersByID = buildSpeakerIndex()

func buildSpeakerIndex() map[string]Speaker {
	index := make(map[string]Speaker, len(presetSpeakers))
	for _, speaker := range presetSpeakers {
		index[speaker.ID] = speaker
	}

	return index
}

// Speakers returns the preset speakers in catalog order.
func Speakers() []Speaker {
	return append([]Speaker(nil), presetSpeakers...)
}

// Lookup returns the preset speaker with the given id.
func Lookup(id string) (Speaker, bool) {
	speaker, ok := speakersByID[id]

	return speaker, ok
}

// Modes returns the synthesis mode descriptors.
func Modes() []Mode {
	return append([]Mode(nil), modes...)
}

// Models returns the engine checkpoint descriptors.
func Models() []Model {
	return append([]Model(nil), models...)
}

// Languages returns the supported language hints.
func Languages() []string {
	return append([]string(nil), languages...)
}
