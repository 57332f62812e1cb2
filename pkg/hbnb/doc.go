// Package hbnb wires the storage engines to the command interpreter.
//
// [Parse] reads flags and environment into a [Config] and the [Command] to
// run, [New] opens the engine the configuration selects and [App.Exec] runs
// commands against it. With no command on the command line, [Main] starts an
// interactive console reading one command per line:
//
//	$ HBNB_TYPE_STORAGE=file hbnb
//	(hbnb) create State name="California"
//	0f6b0f5e-2f4a-4ad2-9a8b-6b7a1f1f1f1f
//	(hbnb) State.count()
//	1
//	(hbnb) quit
//
// The same commands run one at a time from the shell:
//
//	hbnb create City state_id="0f6b..." name="San_Francisco"
//	hbnb all City
//	hbnb -storage db migrate
package hbnb
