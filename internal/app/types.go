package app

import (
	"yashubustudio/pyroclassifier/classifier"
)

const (
	fyneAppID         = "studio.yashubu.pyroclassifier"
	windowTitle       = "Image Classifier"
	defaultConfigFile = "config.toml"
	logLineLimit      = 300
	historyLimit      = 20
)

// ModelLoader opens the model file chosen in the UI.
type ModelLoader func(path string) (classifier.Model, error)

// Options wires the UI to its collaborators.
type Options struct {
	Service    *classifier.Service
	Config     classifier.Config
	ConfigPath string
	LoadModel  ModelLoader
	History    historyStore
}
