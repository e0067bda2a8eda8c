// Package config holds the model presets used to pick a provider and model.
//
// The default presets are embedded from presets.yaml and mirror the presets
// every example uses. A different document can be loaded with Load; the
// active preset is taken from the document's "active" key unless the
// ACTIVE_CONFIG environment variable names another one.
package config
