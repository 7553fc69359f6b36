// Package script runs Lua scripts against a bridge session.
//
// Scripts see a global nativeui table:
//
//	local btn = nativeui.create("Button", "btn1", {text = "Go"})
//	btn:addEventListener("Clicked", function(ev) print("clicked", ev.handle) end)
//	nativeui.get("panel"):addChild(btn)
//	nativeui.whenReady(function() nativeui.get("main"):show() end)
//
// Entity methods queue their operation and return true, or nil and an
// error message when the operation is rejected locally. Success callbacks
// receive a reply table {callId, entityId, handle, code, value}; error
// callbacks receive the message and, for native failures, the result code.
//
// A Runtime is not safe for concurrent use. Run it on the goroutine that
// owns the session.
package script
