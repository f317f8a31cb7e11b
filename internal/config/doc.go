// Package config loads pitchlens settings from a YAML file, an optional .env
// file and the process environment, in that order of increasing precedence.
//
// A minimal file:
//
//	mistral:
//	  model: mistral-small-latest
//	  rate_limit: 1
//	retry:
//	  max_retries: 3
//	  initial_delay: 1s
//	  backoff_factor: 2
//	  max_delay: 60s
//	log:
//	  level: debug
//
// API keys are normally left out of the file and supplied through
// MISTRAL_API_KEY and ELEVENLABS_API_KEY.
package config
