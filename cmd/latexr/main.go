package main

func main() {
	exitOnError(rootCmd.Execute())
}
