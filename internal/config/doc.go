// Package config resolves the pcoctl configuration.
//
// # Overview
//
// This package merges the sources a beamline operator configures pcoctl
// with, from weakest to strongest:
//
//  1. Built-in defaults (beamline endpoints, user id, file chunking)
//  2. The TOML config file, ~/.config/pcoctl/config.toml by default
//  3. PCO_* environment variables (a .env file in the working directory
//     is loaded into the environment first)
//  4. Command line flags, applied by the cmd layer on top of Load
//
// A missing config file is not an error; pcoctl works out of the box
// against the default deployment.
//
// # TOML Format
//
// Example config.toml:
//
//	camera_file = "~/.config/pcoctl/cameras.json"
//	camera = "pco1"
//	connection_address = "tcp://10.10.1.26:8080"
//	flask_api = "http://xbl-daq-34:9901"
//	writer_api = "http://xbl-daq-34:9555"
//	output_file = "~/data/run.h5"
//	dataset_name = "data"
//	n_frames = 100
//	user_id = 503
//	max_frames_per_file = 20000
//	flush_timeout = "500ms"
//	verbose = false
//
// Every field is optional. String fields are trimmed; empty strings keep
// the weaker source's value.
//
// # Environment Variables
//
// Each TOML field has an environment counterpart: PCO_CAMERA_FILE,
// PCO_CAMERA, PCO_CONNECTION_ADDRESS, PCO_FLASK_API, PCO_WRITER_API,
// PCO_OUTPUT_FILE, PCO_DATASET_NAME, PCO_N_FRAMES, PCO_USER_ID,
// PCO_MAX_FRAMES_PER_FILE, PCO_FLUSH_TIMEOUT and PCO_VERBOSE. Numeric and
// boolean variables that fail to parse abort the load; a typo should not
// silently fall back to a default that then writes to the wrong place.
//
// # Endpoint Resolution
//
// WriterConfig turns the resolved settings into a pco.Config. When both
// camera_file and camera are set, the named entry supplies the three
// endpoints; explicit endpoint settings override the entry, and the
// built-in deployment defaults cover whatever remains.
//
// # Path Expansion
//
// The config file path and camera_file are tilde-expanded and made
// absolute. The output file is left alone here; the pco package expands it
// during validation.
//
// # Saving
//
// Save writes a resolved configuration back to disk, which backs
// "pcoctl config --save". Optional fields that are empty are omitted so
// the file stays close to what an operator would write by hand.
package config
