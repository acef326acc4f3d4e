// Package config loads mechbus settings.
//
// Settings come from a TOML file, then environment variables override
// individual values:
//
//	[logging]
//	level = "debug"          # MECHBUS_LOG_LEVEL
//	prefix = "mechbus"       # MECHBUS_LOG_PREFIX
//
//	[console]
//	enabled = true           # MECHBUS_CONSOLE
//	filter = ""              # MECHBUS_CONSOLE_FILTER
//
//	[journal]
//	enabled = false          # MECHBUS_JOURNAL
//	path = "mechbus.db"      # MECHBUS_JOURNAL_PATH
//
//	[scripts]
//	paths = ["alarm.lua"]    # MECHBUS_SCRIPTS (comma separated)
//	watch = false            # MECHBUS_SCRIPT_WATCH
//	timeout = "1s"           # MECHBUS_SCRIPT_TIMEOUT
//
// A missing file is not an error; defaults apply.
package config
