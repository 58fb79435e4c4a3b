package config

import "embed"

const translatorSchemaFile = "schema/translator.schema.json"

//go:embed schema/*.json
var configSchemaFS embed.FS
