/*
Package config loads the content store configuration.

A YAML file declares the storage drivers and the entities they hold:

	log:
	  level: debug
	storage:
	  default: main
	  drivers:
	    - name: main
	      type: mongodb
	      uri: mongodb://localhost:27017
	      database: cms
	    - name: reporting
	      type: postgres
	      client: pgx
	      dsn: postgres://localhost/cms
	localization:
	  fallbackLocale: en
	collections:
	  - slug: posts
	    versioned: true
	    localizedFields: [title]
	globals:
	  - slug: settings
	    driver: reporting

Variables from a .env file and CONTENTSTORE_* environment variables override the file.
Driver settings are addressed by driver name, e.g. CONTENTSTORE_MAIN_URI or
CONTENTSTORE_REPORTING_DSN.
*/
package config
