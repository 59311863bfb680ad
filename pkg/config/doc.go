// Package config defines the service configuration model and its loading
// pipeline: YAML file, defaults, environment variable overrides, then
// validation. Environment variables use the AURACALL_SECTION_FIELD naming
// convention and always win over file values.
package config
