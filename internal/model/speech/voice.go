package speech

// Voice 描述平台提供的一个语音合成音色
type Voice struct {
	URI     string `json:"voiceUri"`
	Name    string `json:"name"`
	Lang    string `json:"lang"`
	Default bool   `json:"default,omitempty"`
}

// Utterance 一次语音播报请求
type Utterance struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	VoiceURI string `json:"voiceUri,omitempty"`
	Lang     string `json:"lang,omitempty"`
}
