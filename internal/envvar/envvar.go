package envvar

const (
	// TTSMakerEnv is the environment variable used to determine the environment
	TTSMakerEnv = "TTSMAKER_ENV"

	// TTSMakerToken is the environment variable used to supply the API token
	TTSMakerToken = "TTSMAKER_TOKEN"

	// TTSMakerBaseURL is the environment variable used to override the API endpoint
	TTSMakerBaseURL = "TTSMAKER_BASE_URL"
)
