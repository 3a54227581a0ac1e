// Package config loads scanner settings.
//
// [Default] returns a ready-to-run configuration covering the stock sources.
// [Load] overlays a YAML, TOML or JSON file on top of it, chosen by file
// extension; fields absent from the file keep their defaults. JSON files that
// fail to parse are repaired with jsonrepair and parsed again, so trailing
// commas and unquoted keys are tolerated.
//
// Environment variables:
//
//	RATESCAN_CONFIG      path of the config file
//	RATESCAN_OUTPUT_DIR  overrides output_dir
//	RATESCAN_LOG_LEVEL   DEBUG, INFO, WARN or ERROR (LOG_LEVEL also accepted)
//	RATESCAN_LOG_FORMAT  compact, pretty or json (LOG_FORMAT also accepted)
package config
