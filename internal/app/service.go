package app

import (
	"io"
	"os"
	"runtime"
)

type Service struct {
	Stdin    io.Reader
	Stdout   io.Writer
	GOOS     string
	Backends BackendFactory
}

func NewService() Service {
	return Service{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		GOOS:   runtime.GOOS,
	}
}
