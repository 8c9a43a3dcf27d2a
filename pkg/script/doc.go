/*
Package script replays editor scripts against a workspace.

A script is a YAML document listing tool invocations in order. It drives the same
entry points the interactive tools use, so a script exercises the journal exactly as
a user session would:

	workspace: floor-1
	max_history: 50
	steps:
	  - device: {id: ap1, position: {x: 40, y: 40}, label: AP lobby, coverage: true, fields: {range: 25}}
	  - region: {id: lobby, kind: zone, label: Lobby, points: [{x: 0, y: 0}, {x: 80, y: 0}, {x: 80, y: 60}]}
	  - walls: {points: [{x: 0, y: 0}, {x: 80, y: 0}, {x: 80, y: 60}], closed: true}
	  - stamp: {kind: text, text: Server room, position: {x: 10, y: 70}}
	  - hide_label: ap1
	  - delete: ap1
	  - undo
	  - redo: 1
	  - settle
*/
package script
