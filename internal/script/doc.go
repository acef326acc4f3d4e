// Package script runs bus subscribers written in Lua.
//
// A script file defines a global on_message function that receives each
// matching message as a table with topic, payload, sender and size fields.
// Scripts may call emit(topic, text) to broadcast from the node they are
// bound to; emitted messages are sent after on_message returns.
//
//	function on_message(msg)
//	  if msg.topic == "damage.report" then
//	    emit("alarm.hull", msg.sender .. " took damage")
//	  end
//	end
//
// Scripts run in a sandbox with only the base, table, string and math
// libraries. A Watcher reloads scripts when their files change.
package script
