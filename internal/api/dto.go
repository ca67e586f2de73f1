package api

// saveVoiceRequest is the payload for creating a voice profile from the
// currently staged reference.
type saveVoiceRequest struct {
	Name    string `json:"name"`
	RefText string `json:"refText"`
}

// renameVoiceRequest is the payload for renaming a voice profile.
type renameVoiceRequest struct {
	Name string `json:"name"`
}

// generateRequest mirrors the wire shape of the original web UI: one flat
// object whose fields are interpreted per mode. It is converted into the
// sum-typed core.GenerationRequest before any work happens.
type generateRequest struct {
	Text             string `json:"text"`
	Mode             string `json:"mode"`
	Model            string `json:"model"`
	Speaker          string `json:"speaker"`
	Language         string `json:"language"`
	Instruct         string `json:"instruct"`
	RefText          string `json:"refText"`
	VoiceDescription string `json:"voiceDescription"`
	SavedVoiceID     string `json:"savedVoiceId"`
}
