package main

import "droidsdk/internal/droidsdk"

func main() {
	droidsdk.Main()
}
