// Package config provides configuration parsing for vbind projects.
//
// The configuration is stored in vbind.yaml at the project root. This
// package handles loading, validating and resolving paths relative to it.
//
// # Configuration File Structure
//
//	name: todo
//	root: templates/index.html
//	data: data.yaml
//	templates: templates
//	cache: true
//	poolCap: 32
//	components:
//	  todo-item:
//	    file: templates/item.html
//	    isolate: [draft]
//	    restrict:
//	      parents: [todo-list]
//	    data:
//	      done: false
//	  badge:
//	    template: <b>{{label}}</b>
//	server:
//	  addr: localhost:3000
//	log:
//	  level: debug
//	  format: json
//
// # Usage
//
//	cfg, err := config.LoadFromDir(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Root:", cfg.RootPath())
package config
