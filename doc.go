// Package canopy runs animated screen transitions for [Ebitengine] UIs.
//
// A [Scene] owns one or more [Container]s. Each container holds the
// [Screen]s registered with it and moves between them one transition at a
// time:
//
//   - Sheet containers ([KindSheet]) show a single screen with [Container.Show]
//     and [Container.Hide].
//   - Page containers ([KindPage]) keep a history with [Container.Push] and
//     [Container.Pop]; popping re-enters the page below.
//   - Popup containers ([KindPopup]) stack overlays with Push and Pop behind
//     one shared dimming backdrop.
//
// # Quick start
//
//	loader := canopy.NewMemoryLoader()
//	loader.Add("home", canopy.PrefabFunc(func() *canopy.Node {
//		return canopy.NewRect("home", 640, 480, canopy.ColorWhite)
//	}))
//
//	scene := canopy.NewScene(canopy.SceneConfig{Loader: loader})
//	sheets, _ := scene.NewContainer(canopy.ContainerConfig{Name: "sheets", Kind: canopy.KindSheet})
//	sheets.Register("home", canopy.RegisterOptions{ID: "home", Sync: true})
//	sheets.Show("home", true)
//
//	canopy.Run(scene, canopy.RunConfig{Title: "My Game", Width: 640, Height: 480})
//
// # Transitions
//
// Every operation runs as a [Task] on the scene's [Scheduler], which
// advances once per [Scene.Update]. A transition has two barriers: the
// exiting screen's WillExit hooks and the entering screen's WillEnter hooks
// must all finish before either screen animates, and both animations must
// finish before the new active state is committed. DidExit and DidEnter
// hooks run after the commit.
//
// Operations that cannot start (already active, in transition, unknown
// screen) return an error wrapping [ErrInvalidState] and change nothing.
// A lifecycle hook that fails leaves its container locked; call
// [Container.Recover] to unlock it. Receivers that implement
// [TransitionAborter] are told about transitions that Recover or
// [Container.Dispose] abandon.
//
// # Lifecycle
//
// Implement [LifecycleEvent] (embedding [LifecycleHooks] for the hooks you
// do not need) and attach it with [Screen.AddLifecycleEvent], or set it as
// the UserData of the prefab's root node. Hooks return a [Routine]; return
// [Delay], [Wait] or your own Routine to make the transition wait.
//
// # Interaction
//
// While any container transitions, the scene's [InteractionCoordinator]
// clears Interactable on the containers in scope and restores it once the
// last of them has finished. See [Settings] for the switches.
//
// [Ebitengine]: https://ebitengine.org
package canopy
