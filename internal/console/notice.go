package console

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a transient message shown next to a view.
type Notice struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

func Success(text string) Notice { return Notice{Level: LevelSuccess, Text: text} }
func Info(text string) Notice    { return Notice{Level: LevelInfo, Text: text} }
func Warning(text string) Notice { return Notice{Level: LevelWarning, Text: text} }
func Failure(text string) Notice { return Notice{Level: LevelError, Text: text} }
