//go:build zmq

package main

import _ "github.com/shadabshaukat/DELTAV2/plugins/zmq"
