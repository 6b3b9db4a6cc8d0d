// Package navigation sequences structural changes to stacks of screens.
//
// A [Navigator] belongs to one owner (a root surface, or a screen running
// its own child containers). Each of its methods wraps one navigation
// action as an [Operation] and hands it to the owner's [ActionQueue], which
// runs operations one at a time, in call order, on the owner's
// looper.Handler. An operation returns how long its visual effect lasts and
// the queue waits that long before starting the next, so a push issued
// during a pop's exit animation never collides with it.
//
// # Setting Up
//
//	l := looper.New()
//	defer l.Quit()
//
//	content := navigation.NewMemoryContainer("content")
//	nav := navigation.NewNavigator(owner, l,
//	    navigation.WithResolver(animation.DefaultCatalog()),
//	    navigation.WithLogger(logger),
//	)
//
// # Navigating
//
//	home := navigation.NewScreen(navigation.ScreenType{Name: "Home"}, nil)
//	detail := navigation.NewScreen(navigation.ScreenType{Name: "Detail"}, nil)
//
//	nav.LoadRoot(content, home, animation.None(), false)
//	nav.Push(home, detail)
//	nav.PopTo(content, "Home", false)
//	nav.OnBackPressed(content) // one screen left: owner.Finish()
//
// # Tabs
//
// [Navigator.LoadMultipleRoots] attaches several bottom screens at once and
// shows one; [Navigator.ShowHideAll] switches between them:
//
//	nav.LoadMultipleRoots(tabs, 1, feed, search, profile)
//	nav.ShowHideAll(tabs, search)
//
// # Hosts
//
// Hosts implement [Container] over their own view hierarchy.
// [MemoryContainer] is a complete in-memory implementation used by tests
// and the navsim simulator. A host must call [Screen.NotifyEnterAnimEnd]
// when an added screen's enter animation ends; [Navigator.PushAndRemoveSource]
// relies on it.
package navigation
