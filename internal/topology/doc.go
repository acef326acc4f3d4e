// Package topology loads bus forests and scenarios from YAML documents.
//
// A document declares buses, the links that join them, and an optional
// list of steps to play back:
//
//	buses:
//	  - id: ship
//	    subscribe: ["bus.", "damage"]
//	  - id: gun
//	    kind: BasicGun       # named basic-gun-A by a component factory
//	    mass: 32
//	links:
//	  - [ship, gun]
//	steps:
//	  - broadcast: {from: gun, topic: damage.report, text: "hit for {}", args: [12]}
//	  - detach: [gun, ship]
//
// Ids are unique within a document; bus names only need to be unique among
// siblings and default to the id. Links and attach steps go through
// bus.Node.Attach, so the usual parent selection rules apply.
package topology
