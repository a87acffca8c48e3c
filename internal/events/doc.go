// Package events carries in-process notifications about account lifecycle
// changes from the services that cause them to the components that react,
// such as the email notifier.
package events
