// Package resources embeds static files shipped with the application.
package resources

import "embed"

// ClassFiles holds the default class table under classes.yaml.
//
//go:embed classes.yaml
var ClassFiles embed.FS

// ClassFileName is the path of the default class table inside ClassFiles.
const ClassFileName = "classes.yaml"
